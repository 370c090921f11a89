package bot

import (
	"errors"
	"fmt"

	"github.com/bellapacxx/inzo-lotto/game"
)

var (
	ErrDeliveryFailure  = errors.New("could not deliver direct message")
	ErrTargetResolution = errors.New("could not resolve target member")
)

// replyFor turns an operation error into the message shown in chat.
func replyFor(err error, minPlayers int) string {
	switch {
	case errors.Is(err, game.ErrNotAuthorized):
		return "❌ Only admins can do that."
	case errors.Is(err, game.ErrAlreadyConfirmed):
		return "❌ You already have a confirmed ticket for this round."
	case errors.Is(err, game.ErrAlreadyPending):
		return "❌ You already requested a ticket. Wait for admin confirmation."
	case errors.Is(err, game.ErrNoSuchTicket):
		return "❌ This user has not requested a ticket."
	case errors.Is(err, game.ErrNotFound):
		return "❌ You have no confirmed ticket for this round."
	case errors.Is(err, game.ErrInsufficientPlayers):
		return fmt.Sprintf("❌ Not enough confirmed players to draw (minimum %d required).", minPlayers)
	case errors.Is(err, game.ErrNoResults):
		return "ℹ️ No draw has been completed yet."
	case errors.Is(err, game.ErrInvalidPaymentMethod):
		return "❌ Unknown payment method. Reply with `usd` or `robux`."
	case errors.Is(err, ErrDeliveryFailure):
		return "❌ I couldn't DM you. Please enable DMs and try again."
	}
	return "❌ Something went wrong, please try again later."
}
