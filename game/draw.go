package game

import (
	"sort"
	"strconv"
	"time"

	"github.com/bellapacxx/inzo-lotto/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxWinners    = 3
	PayoutPercent = 90 // the rest of the pot is the house margin
)

// Entry is one confirmed ticket's score against the drawn numbers.
type Entry struct {
	UserID  string `json:"user_id"`
	Matches int    `json:"matches"`
}

// Winner is a paid entry. Place is 1-based in scan order.
type Winner struct {
	UserID     string          `json:"user_id"`
	Place      int             `json:"place"`
	Matches    int             `json:"matches"`
	ShareUSD   decimal.Decimal `json:"share_usd"`
	ShareRobux int64           `json:"share_robux"`
}

// Outcome describes one settled draw.
type Outcome struct {
	DrawID       string          `json:"draw_id"`
	Round        int             `json:"round"`
	Numbers      []int           `json:"numbers"`
	DrawnAt      time.Time       `json:"drawn_at"`
	Manual       bool            `json:"manual"`
	Players      int             `json:"players"`
	PrizeUSD     decimal.Decimal `json:"prize_usd"`
	PrizeRobux   int64           `json:"prize_robux"`
	ShareUSD     decimal.Decimal `json:"share_usd"`
	ShareRobux   int64           `json:"share_robux"`
	Winners      []Winner        `json:"winners"`
	RolledOver   bool            `json:"rolled_over"`
	NextPotUSD   float64         `json:"next_pot_usd"`
	NextPotRobux int64           `json:"next_pot_robux"`
}

// RunDraw draws numbers, picks winners, splits the prize and starts the next
// round, all on state. Unless manual, fewer than MinPlayers confirmed tickets
// refuses with ErrInsufficientPlayers and leaves state untouched.
func (e *Engine) RunDraw(state *models.RoundState, manual bool, now time.Time) (Outcome, error) {
	confirmed := state.ConfirmedUserIDs()
	if len(confirmed) < e.rules.MinPlayers && !manual {
		return Outcome{}, ErrInsufficientPlayers
	}

	now = now.UTC()
	drawn := e.GenerateNumbers()
	state.DrawnNumbers = drawn
	state.LastDraw = &now

	prizeUSD, prizeRobux := PrizePool(state.PotUSD, state.PotRobux)

	entries := make([]Entry, 0, len(confirmed))
	for _, uid := range confirmed {
		entries = append(entries, Entry{UserID: uid, Matches: CountMatches(state.Tickets[uid].Numbers, drawn)})
	}
	chosen := SelectWinners(Rank(entries))

	out := Outcome{
		DrawID:     uuid.NewString(),
		Round:      state.Round,
		Numbers:    append([]int(nil), drawn...),
		DrawnAt:    now,
		Manual:     manual,
		Players:    len(confirmed),
		PrizeUSD:   prizeUSD,
		PrizeRobux: prizeRobux,
		ShareUSD:   decimal.Zero,
	}

	if len(chosen) == 0 {
		out.RolledOver = true
		state.PotUSD = prizeUSD.InexactFloat64()
		state.PotRobux = prizeRobux
	} else {
		out.ShareUSD, out.ShareRobux = SplitPrize(prizeUSD, prizeRobux, len(chosen))
		for i, en := range chosen {
			out.Winners = append(out.Winners, Winner{
				UserID:     en.UserID,
				Place:      i + 1,
				Matches:    en.Matches,
				ShareUSD:   out.ShareUSD,
				ShareRobux: out.ShareRobux,
			})
		}
		state.PotUSD = 0
		state.PotRobux = 0
	}
	out.NextPotUSD = state.PotUSD
	out.NextPotRobux = state.PotRobux

	state.LastResult = &models.DrawSummary{Round: state.Round, Numbers: out.Numbers, DrawnAt: now}
	state.Round++
	state.Tickets = make(map[string]*models.Ticket)
	state.DrawnNumbers = []int{}
	return out, nil
}

// PrizePool returns the paid share of the pots: USD rounded to cents, Robux
// floored. The USD share is computed on float64 and rounded from its exact
// binary value, half to even, so amounts agree with existing data files.
func PrizePool(potUSD float64, potRobux int64) (decimal.Decimal, int64) {
	usd := cents(potUSD * (PayoutPercent / 100.0))
	robux := potRobux * PayoutPercent / 100
	return usd, robux
}

// SplitPrize divides the prize evenly. The Robux remainder is dropped.
func SplitPrize(prizeUSD decimal.Decimal, prizeRobux int64, winners int) (decimal.Decimal, int64) {
	if winners <= 0 {
		return decimal.Zero, 0
	}
	usd := decimal.Zero
	if prizeUSD.IsPositive() {
		usd = cents(prizeUSD.InexactFloat64() / float64(winners))
	}
	var robux int64
	if prizeRobux > 0 {
		robux = prizeRobux / int64(winners)
	}
	return usd, robux
}

// Rank orders entries by matches, best first; equal scores keep user id order.
func Rank(entries []Entry) []Entry {
	ranked := append([]Entry(nil), entries...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Matches != ranked[j].Matches {
			return ranked[i].Matches > ranked[j].Matches
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	return ranked
}

// SelectWinners scans ranked entries and keeps at most MaxWinners. Zero scores
// are skipped. An entry is kept when its score equals the first kept score or
// the last recorded score; the first entry that matches neither ends the scan.
// Only the first kept score and scores kept through the second rule are
// recorded, so in practice every winner shares the top nonzero score.
func SelectWinners(ranked []Entry) []Entry {
	var winners []Entry
	var recorded []int
	for _, en := range ranked {
		if en.Matches == 0 {
			continue
		}
		if len(winners) >= MaxWinners {
			break
		}
		switch {
		case len(recorded) == 0 || en.Matches == recorded[0]:
			winners = append(winners, en)
			if len(recorded) == 0 {
				recorded = append(recorded, en.Matches)
			}
		case en.Matches == recorded[len(recorded)-1]:
			winners = append(winners, en)
			recorded = append(recorded, en.Matches)
		default:
			return winners
		}
	}
	return winners
}

// cents rounds v to two decimals from its exact binary value, ties to even.
func cents(v float64) decimal.Decimal {
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', 2, 64))
}
