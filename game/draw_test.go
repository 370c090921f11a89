package game

import (
	"testing"
	"time"

	"github.com/bellapacxx/inzo-lotto/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drawTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// peekDraw returns the numbers an engine built with seed will draw first.
func peekDraw(seed int64) []int {
	return newTestEngine(seed).GenerateNumbers()
}

// ticketWith returns a valid ticket sharing exactly k numbers with drawn.
func ticketWith(drawn []int, k int) []int {
	in := make(map[int]bool)
	for _, n := range drawn {
		in[n] = true
	}
	nums := append([]int(nil), drawn[:k]...)
	for n := MinNumber; len(nums) < NumbersPerTicket; n++ {
		if !in[n] {
			nums = append(nums, n)
		}
	}
	return nums
}

func confirmedState(tickets map[string][]int) models.RoundState {
	state := models.NewRoundState()
	for uid, nums := range tickets {
		state.Tickets[uid] = &models.Ticket{Numbers: nums, Confirmed: true, PaymentMethod: models.PaymentUSD, Username: "pp-" + uid}
	}
	return state
}

func TestSelectWinners(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		want   []string
	}{
		{"all tied at top", []int{5, 5, 5, 5}, []string{"u0", "u1", "u2"}},
		{"tie then lower", []int{5, 5, 3}, []string{"u0", "u1"}},
		{"strictly decreasing", []int{5, 4, 3}, []string{"u0"}},
		{"single", []int{2, 0, 0}, []string{"u0"}},
		{"zeros only", []int{0, 0, 0}, nil},
		{"empty", nil, nil},
		{"three way tie at two", []int{2, 2, 2, 1}, []string{"u0", "u1", "u2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []Entry
			for i, s := range tt.scores {
				entries = append(entries, Entry{UserID: "u" + string(rune('0'+i)), Matches: s})
			}
			var got []string
			for _, w := range SelectWinners(Rank(entries)) {
				got = append(got, w.UserID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRank(t *testing.T) {
	ranked := Rank([]Entry{{"b", 1}, {"c", 3}, {"a", 1}, {"d", 0}})
	assert.Equal(t, []Entry{{"c", 3}, {"a", 1}, {"b", 1}, {"d", 0}}, ranked)
}

func TestPrizePool(t *testing.T) {
	usd, robux := PrizePool(10, 100)
	assert.True(t, decimal.RequireFromString("9").Equal(usd), usd.String())
	assert.Equal(t, int64(90), robux)

	usd, robux = PrizePool(0, 0)
	assert.True(t, usd.IsZero())
	assert.Zero(t, robux)

	// k tickets at 0.25 USD; expected values are what round(pot*0.9, 2)
	// yields on the same float64 pot.
	cases := []struct {
		tickets int
		want    string
	}{
		{1, "0.23"},
		{3, "0.68"},
		{5, "1.12"},
		{7, "1.57"},
		{9, "2.02"},
		{10, "2.25"},
	}
	for _, c := range cases {
		usd, robux := PrizePool(0.25*float64(c.tickets), int64(20*c.tickets))
		assert.Equal(t, c.want, usd.StringFixed(2), "%d tickets", c.tickets)
		assert.Equal(t, int64(18*c.tickets), robux, "%d tickets", c.tickets)
	}
}

func TestSplitPrize(t *testing.T) {
	usd, robux := SplitPrize(decimal.RequireFromString("9.00"), 10, 3)
	assert.Equal(t, "3.00", usd.StringFixed(2))
	assert.Equal(t, int64(3), robux)

	usd, _ = SplitPrize(decimal.RequireFromString("1.12"), 0, 3)
	assert.Equal(t, "0.37", usd.StringFixed(2))

	// 0.125 is exact in binary, so the tie goes to the even cent.
	usd, _ = SplitPrize(decimal.RequireFromString("0.25"), 0, 2)
	assert.Equal(t, "0.12", usd.StringFixed(2))

	usd, robux = SplitPrize(decimal.Zero, 0, 2)
	assert.True(t, usd.IsZero())
	assert.Zero(t, robux)

	usd, robux = SplitPrize(decimal.RequireFromString("1"), 1, 0)
	assert.True(t, usd.IsZero())
	assert.Zero(t, robux)
}

func TestRunDraw_InsufficientPlayers(t *testing.T) {
	e := newTestEngine(11)
	state := confirmedState(map[string][]int{"a": {1, 2, 3, 4, 5}, "b": {6, 7, 8, 9, 10}})
	state.Tickets["c"] = &models.Ticket{Numbers: []int{}, PaymentMethod: models.PaymentRobux}
	state.PotUSD = 0.5
	state.PotRobux = 20
	state.Round = 2
	before := state.Clone()

	_, err := e.RunDraw(&state, false, drawTime)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, before, state)
}

func TestRunDraw_ManualWithNoPlayersRollsOver(t *testing.T) {
	e := newTestEngine(11)
	state := models.NewRoundState()
	state.PotUSD = 10
	state.PotRobux = 55

	out, err := e.RunDraw(&state, true, drawTime)
	require.NoError(t, err)

	assert.True(t, out.RolledOver)
	assert.Empty(t, out.Winners)
	assert.True(t, ValidNumbers(out.Numbers))
	assert.Equal(t, 1, out.Round)
	assert.NotEmpty(t, out.DrawID)
	assert.Equal(t, 9.0, state.PotUSD)
	assert.Equal(t, int64(49), state.PotRobux)
	assert.Equal(t, 2, state.Round)
	assert.Empty(t, state.Tickets)
	assert.Empty(t, state.DrawnNumbers)
	require.NotNil(t, state.LastDraw)
	assert.True(t, drawTime.Equal(*state.LastDraw))
	require.NotNil(t, state.LastResult)
	assert.Equal(t, 1, state.LastResult.Round)
	assert.Equal(t, out.Numbers, state.LastResult.Numbers)
}

func TestRunDraw_EmptyPotRollsOverToZero(t *testing.T) {
	e := newTestEngine(2)
	state := models.NewRoundState()
	out, err := e.RunDraw(&state, true, drawTime)
	require.NoError(t, err)
	assert.True(t, out.RolledOver)
	assert.Zero(t, state.PotUSD)
	assert.Zero(t, state.PotRobux)
}

func TestRunDraw_TiedWinnersSplitPot(t *testing.T) {
	const seed = 21
	drawn := peekDraw(seed)
	e := newTestEngine(seed)

	state := confirmedState(map[string][]int{
		"alice": ticketWith(drawn, 5),
		"bob":   ticketWith(drawn, 5),
		"carol": ticketWith(drawn, 3),
	})
	state.PotUSD = 9
	state.PotRobux = 100
	state.Round = 7

	out, err := e.RunDraw(&state, false, drawTime)
	require.NoError(t, err)
	assert.Equal(t, drawn, out.Numbers)
	assert.False(t, out.RolledOver)
	assert.Equal(t, 3, out.Players)

	require.Len(t, out.Winners, 2)
	assert.Equal(t, "alice", out.Winners[0].UserID)
	assert.Equal(t, 1, out.Winners[0].Place)
	assert.Equal(t, "bob", out.Winners[1].UserID)
	assert.Equal(t, 2, out.Winners[1].Place)
	for _, w := range out.Winners {
		assert.Equal(t, 5, w.Matches)
		assert.Equal(t, "4.05", w.ShareUSD.StringFixed(2))
		assert.Equal(t, int64(45), w.ShareRobux)
	}

	assert.Zero(t, state.PotUSD)
	assert.Zero(t, state.PotRobux)
	assert.Equal(t, 8, state.Round)
	assert.Empty(t, state.Tickets)
}

func TestRunDraw_StrictlyDecreasingScoresPayTopOnly(t *testing.T) {
	const seed = 33
	drawn := peekDraw(seed)
	e := newTestEngine(seed)

	state := confirmedState(map[string][]int{
		"a": ticketWith(drawn, 5),
		"b": ticketWith(drawn, 4),
		"c": ticketWith(drawn, 3),
	})
	state.PotRobux = 10

	out, err := e.RunDraw(&state, false, drawTime)
	require.NoError(t, err)
	require.Len(t, out.Winners, 1)
	assert.Equal(t, "a", out.Winners[0].UserID)
	assert.Equal(t, int64(9), out.Winners[0].ShareRobux)
}

func TestRunDraw_NoMatchesRollsOver(t *testing.T) {
	const seed = 44
	drawn := peekDraw(seed)
	e := newTestEngine(seed)

	state := confirmedState(map[string][]int{
		"a": ticketWith(drawn, 0),
		"b": ticketWith(drawn, 0),
		"c": ticketWith(drawn, 0),
	})
	state.PotUSD = 0.75
	state.PotRobux = 40

	out, err := e.RunDraw(&state, false, drawTime)
	require.NoError(t, err)
	assert.True(t, out.RolledOver)
	assert.Equal(t, 0.68, state.PotUSD)
	assert.Equal(t, int64(36), state.PotRobux)
	assert.Equal(t, 0.68, out.NextPotUSD)
}

func TestRunDraw_RoundAlwaysAdvancesByOne(t *testing.T) {
	e := newTestEngine(9)
	state := models.NewRoundState()
	for want := 2; want < 6; want++ {
		_, err := e.RunDraw(&state, true, drawTime)
		require.NoError(t, err)
		assert.Equal(t, want, state.Round)
	}
}
