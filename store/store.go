// Package store persists the lottery RoundState document.
package store

import (
	"context"

	"github.com/bellapacxx/inzo-lotto/models"
)

// Store loads and saves the whole round document. Implementations are safe for
// concurrent use; callers that read-modify-write must serialize themselves.
type Store interface {
	// Load returns the saved state, or models.NewRoundState if nothing is saved.
	Load(ctx context.Context) (models.RoundState, error)
	// Save replaces the saved state.
	Save(ctx context.Context, state models.RoundState) error
}
