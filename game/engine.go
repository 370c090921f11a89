package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/bellapacxx/inzo-lotto/models"
	"github.com/shopspring/decimal"
)

// Rules are the fixed lottery settings an Engine is built with.
type Rules struct {
	TicketPriceUSD   decimal.Decimal
	TicketPriceRobux int64
	MinPlayers       int
	Admins           []string
}

// Engine applies ticket and draw operations to a RoundState. It holds no round
// data itself; callers load, mutate and save the state.
type Engine struct {
	rules  Rules
	admins map[string]bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine builds an engine. A nil rng is seeded from the clock.
func NewEngine(rules Rules, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	admins := make(map[string]bool, len(rules.Admins))
	for _, id := range rules.Admins {
		admins[id] = true
	}
	rules.Admins = append([]string(nil), rules.Admins...)
	return &Engine{rules: rules, admins: admins, rng: rng}
}

func (e *Engine) Rules() Rules { return e.rules }

func (e *Engine) IsAdmin(userID string) bool { return e.admins[userID] }

// CheckEligible reports whether the user may start a ticket request.
func (e *Engine) CheckEligible(state *models.RoundState, userID string) error {
	t, ok := state.Tickets[userID]
	if !ok || t == nil {
		return nil
	}
	if t.Confirmed {
		return ErrAlreadyConfirmed
	}
	return ErrAlreadyPending
}

// RequestTicket records an unconfirmed ticket for the user.
func (e *Engine) RequestTicket(state *models.RoundState, userID string, method models.PaymentMethod, username string) (models.Ticket, error) {
	if err := e.CheckEligible(state, userID); err != nil {
		return models.Ticket{}, err
	}
	if method != models.PaymentUSD && method != models.PaymentRobux {
		return models.Ticket{}, ErrInvalidPaymentMethod
	}

	t := &models.Ticket{
		Numbers:       []int{},
		PaymentMethod: method,
		Username:      username,
	}
	if state.Tickets == nil {
		state.Tickets = make(map[string]*models.Ticket)
	}
	state.Tickets[userID] = t
	return *t, nil
}

// ConfirmTicket assigns numbers to a pending ticket and adds its price to the
// matching pot. Confirming twice returns ErrAlreadyConfirmed and changes nothing.
func (e *Engine) ConfirmTicket(state *models.RoundState, adminID, targetID string) (models.Ticket, error) {
	if !e.IsAdmin(adminID) {
		return models.Ticket{}, ErrNotAuthorized
	}
	t, ok := state.Tickets[targetID]
	if !ok || t == nil {
		return models.Ticket{}, ErrNoSuchTicket
	}
	if t.Confirmed {
		return copyTicket(t), ErrAlreadyConfirmed
	}

	switch t.PaymentMethod {
	case models.PaymentUSD:
		state.PotUSD = decimal.NewFromFloat(state.PotUSD).Add(e.rules.TicketPriceUSD).InexactFloat64()
	case models.PaymentRobux:
		state.PotRobux += e.rules.TicketPriceRobux
	default:
		return models.Ticket{}, ErrInvalidPaymentMethod
	}

	t.Numbers = e.GenerateNumbers()
	t.Confirmed = true
	return copyTicket(t), nil
}

// GetTicket returns the user's confirmed ticket. Pending tickets are reported
// as ErrNotFound, the same as absent ones.
func GetTicket(state *models.RoundState, userID string) (models.Ticket, error) {
	t, ok := state.Tickets[userID]
	if !ok || t == nil || !t.Confirmed {
		return models.Ticket{}, ErrNotFound
	}
	return copyTicket(t), nil
}

// ArchivedTicket is a confirmed ticket removed by a purge.
type ArchivedTicket struct {
	UserID string
	models.Ticket
}

// Purge clears tickets and pots without drawing and returns the confirmed
// tickets, sorted by user id, for archival. Round and last draw are kept.
func (e *Engine) Purge(state *models.RoundState) []ArchivedTicket {
	ids := state.ConfirmedUserIDs()
	archived := make([]ArchivedTicket, 0, len(ids))
	for _, uid := range ids {
		archived = append(archived, ArchivedTicket{UserID: uid, Ticket: copyTicket(state.Tickets[uid])})
	}

	state.PotUSD = 0
	state.PotRobux = 0
	state.Tickets = make(map[string]*models.Ticket)
	return archived
}

func copyTicket(t *models.Ticket) models.Ticket {
	cp := *t
	cp.Numbers = append([]int{}, t.Numbers...)
	return cp
}
