package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bellapacxx/inzo-lotto/config"
	"github.com/bellapacxx/inzo-lotto/game"
	"github.com/bellapacxx/inzo-lotto/models"
	"github.com/bellapacxx/inzo-lotto/store"
	"github.com/bellapacxx/inzo-lotto/utils/logger"
	"go.uber.org/zap"
)

// DrawListener is told about every settled draw.
type DrawListener func(game.Outcome)

// Lottery runs ticket and draw operations against the store. Every
// load-modify-save cycle holds mu, so concurrent commands never lose updates.
type Lottery struct {
	cfg    config.Config
	store  store.Store
	engine *game.Engine
	log    *zap.SugaredLogger
	now    func() time.Time

	mu sync.Mutex

	listenersMu sync.RWMutex
	listeners   []DrawListener
}

// RulesFromConfig extracts the engine settings from the process config.
func RulesFromConfig(cfg config.Config) game.Rules {
	return game.Rules{
		TicketPriceUSD:   cfg.TicketPriceUSD,
		TicketPriceRobux: cfg.TicketPriceRobux,
		MinPlayers:       cfg.MinPlayers,
		Admins:           cfg.AdminIDs,
	}
}

func NewLottery(cfg config.Config, st store.Store, engine *game.Engine) *Lottery {
	if engine == nil {
		engine = game.NewEngine(RulesFromConfig(cfg), nil)
	}
	return &Lottery{
		cfg:    cfg,
		store:  st,
		engine: engine,
		log:    logger.Named("lottery"),
		now:    time.Now,
	}
}

// WithClock replaces the time source; tests use it to move time.
func (l *Lottery) WithClock(now func() time.Time) *Lottery {
	l.now = now
	return l
}

func (l *Lottery) Config() config.Config { return l.cfg }

// OnDraw registers fn to receive every settled outcome.
func (l *Lottery) OnDraw(fn DrawListener) {
	l.listenersMu.Lock()
	defer l.listenersMu.Unlock()
	l.listeners = append(l.listeners, fn)
}

func (l *Lottery) IsAdmin(userID string) bool {
	return l.engine.IsAdmin(userID)
}

// CheckEligible tells whether userID may start buying a ticket.
func (l *Lottery) CheckEligible(ctx context.Context, userID string) error {
	state, err := l.load(ctx)
	if err != nil {
		return err
	}
	return l.engine.CheckEligible(&state, userID)
}

func (l *Lottery) RequestTicket(ctx context.Context, userID string, method models.PaymentMethod, username string) (models.Ticket, error) {
	var ticket models.Ticket
	err := l.update(ctx, func(state *models.RoundState) error {
		var err error
		ticket, err = l.engine.RequestTicket(state, userID, method, username)
		return err
	})
	if err != nil {
		return models.Ticket{}, err
	}
	l.log.Infow("ticket requested", "user_id", userID, "payment_method", method)
	return ticket, nil
}

// ConfirmTicket confirms targetID's ticket on behalf of adminID. On
// game.ErrAlreadyConfirmed the existing ticket is returned with the error.
func (l *Lottery) ConfirmTicket(ctx context.Context, adminID, targetID string) (models.Ticket, error) {
	var ticket models.Ticket
	err := l.update(ctx, func(state *models.RoundState) error {
		var err error
		ticket, err = l.engine.ConfirmTicket(state, adminID, targetID)
		return err
	})
	if err != nil {
		return ticket, err
	}
	l.log.Infow("ticket confirmed",
		"admin_id", adminID,
		"user_id", targetID,
		"payment_method", ticket.PaymentMethod,
		"numbers", ticket.Numbers,
	)
	return ticket, nil
}

func (l *Lottery) MyTicket(ctx context.Context, userID string) (models.Ticket, error) {
	state, err := l.load(ctx)
	if err != nil {
		return models.Ticket{}, err
	}
	return game.GetTicket(&state, userID)
}

// Draw runs and settles a draw. Manual draws skip the minimum player check.
func (l *Lottery) Draw(ctx context.Context, manual bool) (game.Outcome, error) {
	var out game.Outcome
	err := l.update(ctx, func(state *models.RoundState) error {
		var err error
		out, err = l.engine.RunDraw(state, manual, l.now())
		return err
	})
	if err != nil {
		if errors.Is(err, game.ErrInsufficientPlayers) {
			l.log.Infow("draw skipped", "reason", err.Error(), "manual", manual)
		}
		return game.Outcome{}, err
	}

	l.log.Infow("draw settled",
		"draw_id", out.DrawID,
		"round", out.Round,
		"numbers", out.Numbers,
		"players", out.Players,
		"winners", len(out.Winners),
		"rolled_over", out.RolledOver,
		"prize_usd", out.PrizeUSD.StringFixed(2),
		"prize_robux", out.PrizeRobux,
		"manual", manual,
	)
	l.notify(out)
	return out, nil
}

// Results returns the last settled draw.
func (l *Lottery) Results(ctx context.Context) (models.DrawSummary, error) {
	state, err := l.load(ctx)
	if err != nil {
		return models.DrawSummary{}, err
	}
	if state.LastResult == nil {
		return models.DrawSummary{}, game.ErrNoResults
	}
	return *state.LastResult, nil
}

// Purge clears the round's tickets and pots without drawing and returns the
// confirmed tickets it removed.
func (l *Lottery) Purge(ctx context.Context) ([]game.ArchivedTicket, error) {
	var archived []game.ArchivedTicket
	err := l.update(ctx, func(state *models.RoundState) error {
		archived = l.engine.Purge(state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Infow("round purged", "confirmed_tickets", len(archived))
	return archived, nil
}

// DueForDraw reports whether at least DrawInterval, counted in whole days,
// has passed since the last draw. A round that never drew counts as due.
func (l *Lottery) DueForDraw(ctx context.Context) (bool, error) {
	state, err := l.load(ctx)
	if err != nil {
		return false, err
	}
	now := l.now().UTC()
	last := now.Add(-l.cfg.DrawInterval)
	if state.LastDraw != nil {
		last = *state.LastDraw
	}
	elapsed := now.Sub(last).Truncate(24 * time.Hour)
	return elapsed >= l.cfg.DrawInterval, nil
}

// RoundSummary is the public view of the current round.
type RoundSummary struct {
	Round           int                 `json:"round"`
	PotUSD          float64             `json:"pot_usd"`
	PotRobux        int64               `json:"pot_robux"`
	ConfirmedCount  int                 `json:"confirmed_tickets"`
	PendingCount    int                 `json:"pending_tickets"`
	TicketPriceUSD  string              `json:"ticket_price_usd"`
	TicketPriceRbx  int64               `json:"ticket_price_robux"`
	LastDraw        *time.Time          `json:"last_draw"`
	NextScheduledAt *time.Time          `json:"next_scheduled_at"`
	LastResult      *models.DrawSummary `json:"last_result"`
}

func (l *Lottery) Summary(ctx context.Context) (RoundSummary, error) {
	state, err := l.load(ctx)
	if err != nil {
		return RoundSummary{}, err
	}
	confirmed := len(state.ConfirmedUserIDs())
	sum := RoundSummary{
		Round:          state.Round,
		PotUSD:         state.PotUSD,
		PotRobux:       state.PotRobux,
		ConfirmedCount: confirmed,
		PendingCount:   len(state.Tickets) - confirmed,
		TicketPriceUSD: l.cfg.TicketPriceUSD.StringFixed(2),
		TicketPriceRbx: l.cfg.TicketPriceRobux,
		LastDraw:       state.LastDraw,
		LastResult:     state.LastResult,
	}
	if state.LastDraw != nil {
		next := state.LastDraw.Add(l.cfg.DrawInterval)
		sum.NextScheduledAt = &next
	}
	return sum, nil
}

func (l *Lottery) load(ctx context.Context) (models.RoundState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Load(ctx)
}

// update loads, applies fn and saves once. Nothing is saved when fn fails.
func (l *Lottery) update(ctx context.Context, fn func(*models.RoundState) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, err := l.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&state); err != nil {
		return err
	}
	if err := l.store.Save(ctx, state); err != nil {
		l.log.Errorw("save failed", "error", err)
		return err
	}
	return nil
}

func (l *Lottery) notify(out game.Outcome) {
	l.listenersMu.RLock()
	listeners := append([]DrawListener(nil), l.listeners...)
	l.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(out)
	}
}
