package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentUSD   PaymentMethod = "usd"
	PaymentRobux PaymentMethod = "robux"
)

// ParsePaymentMethod accepts "usd" or "robux" in any case.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentUSD:
		return PaymentUSD, true
	case PaymentRobux:
		return PaymentRobux, true
	}
	return "", false
}

// Ticket is one user's entry in the current round
type Ticket struct {
	Numbers       []int         `json:"numbers"` // empty until confirmed
	Confirmed     bool          `json:"confirmed"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Username      string        `json:"username"` // PayPal or Roblox username
}

// DrawSummary is the last settled draw, kept for the results command.
type DrawSummary struct {
	Round   int       `json:"round"`
	Numbers []int     `json:"numbers"`
	DrawnAt time.Time `json:"drawn_at"`
}

// RoundState is the whole persisted document.
type RoundState struct {
	Tickets      map[string]*Ticket `json:"tickets"` // key = discord user id
	PotUSD       float64            `json:"pot_usd"`
	PotRobux     int64              `json:"pot_robux"`
	DrawnNumbers []int              `json:"drawn_numbers"`
	Round        int                `json:"round"`
	LastDraw     *time.Time         `json:"last_draw"`
	LastResult   *DrawSummary       `json:"last_result,omitempty"`
}

// legacyTimeLayout is how older data files wrote last_draw: UTC without a zone.
const legacyTimeLayout = "2006-01-02T15:04:05.999999999"

// ParseTimestamp reads an RFC 3339 time, or a zoneless one taken as UTC.
func ParseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", v)
	}
	return t, nil
}

// UnmarshalJSON accepts last_draw in either timestamp form.
func (s *RoundState) UnmarshalJSON(data []byte) error {
	type plain RoundState
	aux := struct {
		*plain
		LastDraw *string `json:"last_draw"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.LastDraw = nil
	if aux.LastDraw != nil && *aux.LastDraw != "" {
		t, err := ParseTimestamp(*aux.LastDraw)
		if err != nil {
			return fmt.Errorf("last_draw: %w", err)
		}
		s.LastDraw = &t
	}
	return nil
}

// NewRoundState returns the document used when nothing has been saved yet.
func NewRoundState() RoundState {
	return RoundState{
		Tickets:      make(map[string]*Ticket),
		DrawnNumbers: []int{},
		Round:        1,
	}
}

// Normalize fills fields a hand-edited or older document may lack.
func (s *RoundState) Normalize() {
	if s.Tickets == nil {
		s.Tickets = make(map[string]*Ticket)
	}
	if s.DrawnNumbers == nil {
		s.DrawnNumbers = []int{}
	}
	if s.Round < 1 {
		s.Round = 1
	}
}

// ConfirmedUserIDs lists users holding a confirmed ticket, sorted.
func (s *RoundState) ConfirmedUserIDs() []string {
	ids := make([]string, 0, len(s.Tickets))
	for uid, t := range s.Tickets {
		if t != nil && t.Confirmed {
			ids = append(ids, uid)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone deep-copies the state so callers can mutate it freely.
func (s RoundState) Clone() RoundState {
	out := s
	out.Tickets = make(map[string]*Ticket, len(s.Tickets))
	for uid, t := range s.Tickets {
		if t == nil {
			continue
		}
		cp := *t
		cp.Numbers = cloneInts(t.Numbers)
		out.Tickets[uid] = &cp
	}
	out.DrawnNumbers = cloneInts(s.DrawnNumbers)
	if s.LastDraw != nil {
		ts := *s.LastDraw
		out.LastDraw = &ts
	}
	if s.LastResult != nil {
		lr := *s.LastResult
		lr.Numbers = cloneInts(s.LastResult.Numbers)
		out.LastResult = &lr
	}
	return out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	return append(make([]int, 0, len(in)), in...)
}
