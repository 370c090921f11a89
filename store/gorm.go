package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bellapacxx/inzo-lotto/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps the state document in a single round_states row.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore expects the round_states table to exist (see config.Migrate).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context) (models.RoundState, error) {
	var rec models.RoundRecord
	err := s.db.WithContext(ctx).First(&rec, "id = ?", models.RoundRecordKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewRoundState(), nil
	}
	if err != nil {
		return models.RoundState{}, fmt.Errorf("load round state: %w", err)
	}

	var state models.RoundState
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return models.RoundState{}, fmt.Errorf("decode round state: %w", err)
	}
	state.Normalize()
	return state, nil
}

func (s *GormStore) Save(ctx context.Context, state models.RoundState) error {
	state.Normalize()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	rec := models.RoundRecord{
		ID:    models.RoundRecordKey,
		Round: state.Round,
		State: datatypes.JSON(data),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"round", "state", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save round state: %w", err)
	}
	return nil
}
