package game

import (
	"math/rand"
	"testing"

	"github.com/bellapacxx/inzo-lotto/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID  = "667010067585040390"
	playerID = "1001"
)

func testRules() Rules {
	return Rules{
		TicketPriceUSD:   decimal.RequireFromString("0.25"),
		TicketPriceRobux: 20,
		MinPlayers:       3,
		Admins:           []string{adminID},
	}
}

func newTestEngine(seed int64) *Engine {
	return NewEngine(testRules(), rand.New(rand.NewSource(seed)))
}

func TestGenerateNumbers(t *testing.T) {
	e := newTestEngine(1)
	for i := 0; i < 2000; i++ {
		nums := e.GenerateNumbers()
		require.True(t, ValidNumbers(nums), "invalid draw %v", nums)
		for j := 1; j < len(nums); j++ {
			require.Less(t, nums[j-1], nums[j], "draw not sorted: %v", nums)
		}
	}
}

func TestGenerateNumbers_CoversRange(t *testing.T) {
	e := newTestEngine(7)
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		for _, n := range e.GenerateNumbers() {
			seen[n] = true
		}
	}
	assert.Len(t, seen, MaxNumber-MinNumber+1)
}

func TestCountMatches(t *testing.T) {
	assert.Equal(t, 5, CountMatches([]int{1, 2, 3, 4, 5}, []int{5, 4, 3, 2, 1}))
	assert.Equal(t, 2, CountMatches([]int{1, 2, 30, 40, 50}, []int{1, 2, 3, 4, 5}))
	assert.Equal(t, 0, CountMatches(nil, []int{1, 2, 3, 4, 5}))
	assert.Equal(t, 1, CountMatches([]int{1, 1}, []int{1, 2}))
}

func TestRequestTicket(t *testing.T) {
	e := newTestEngine(1)
	state := models.NewRoundState()

	ticket, err := e.RequestTicket(&state, playerID, models.PaymentUSD, "paypal-user")
	require.NoError(t, err)
	assert.False(t, ticket.Confirmed)
	assert.Empty(t, ticket.Numbers)
	assert.Equal(t, "paypal-user", ticket.Username)

	t.Run("pending twice", func(t *testing.T) {
		_, err := e.RequestTicket(&state, playerID, models.PaymentUSD, "paypal-user")
		assert.ErrorIs(t, err, ErrAlreadyPending)
		_, err = e.RequestTicket(&state, playerID, models.PaymentRobux, "roblox-user")
		assert.ErrorIs(t, err, ErrAlreadyPending)
		assert.Equal(t, "paypal-user", state.Tickets[playerID].Username)
	})

	t.Run("after confirmation", func(t *testing.T) {
		_, err := e.ConfirmTicket(&state, adminID, playerID)
		require.NoError(t, err)
		_, err = e.RequestTicket(&state, playerID, models.PaymentUSD, "paypal-user")
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
		assert.ErrorIs(t, e.CheckEligible(&state, playerID), ErrAlreadyConfirmed)
	})

	t.Run("invalid method", func(t *testing.T) {
		_, err := e.RequestTicket(&state, "2002", models.PaymentMethod("btc"), "x")
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
		assert.NotContains(t, state.Tickets, "2002")
	})
}

func TestConfirmTicket(t *testing.T) {
	e := newTestEngine(3)
	state := models.NewRoundState()
	_, err := e.RequestTicket(&state, "usd-user", models.PaymentUSD, "pp")
	require.NoError(t, err)
	_, err = e.RequestTicket(&state, "robux-user", models.PaymentRobux, "rb")
	require.NoError(t, err)

	t.Run("not admin", func(t *testing.T) {
		_, err := e.ConfirmTicket(&state, playerID, "usd-user")
		assert.ErrorIs(t, err, ErrNotAuthorized)
		assert.False(t, state.Tickets["usd-user"].Confirmed)
	})

	t.Run("no ticket", func(t *testing.T) {
		_, err := e.ConfirmTicket(&state, adminID, "nobody")
		assert.ErrorIs(t, err, ErrNoSuchTicket)
	})

	t.Run("usd pot", func(t *testing.T) {
		ticket, err := e.ConfirmTicket(&state, adminID, "usd-user")
		require.NoError(t, err)
		assert.True(t, ticket.Confirmed)
		assert.True(t, ValidNumbers(ticket.Numbers))
		assert.Equal(t, 0.25, state.PotUSD)
		assert.Equal(t, int64(0), state.PotRobux)
	})

	t.Run("robux pot", func(t *testing.T) {
		_, err := e.ConfirmTicket(&state, adminID, "robux-user")
		require.NoError(t, err)
		assert.Equal(t, 0.25, state.PotUSD)
		assert.Equal(t, int64(20), state.PotRobux)
	})

	t.Run("idempotent", func(t *testing.T) {
		before := append([]int(nil), state.Tickets["usd-user"].Numbers...)
		ticket, err := e.ConfirmTicket(&state, adminID, "usd-user")
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
		assert.Equal(t, before, ticket.Numbers)
		assert.Equal(t, 0.25, state.PotUSD)
		assert.Equal(t, int64(20), state.PotRobux)
	})
}

func TestConfirmTicket_PotHasNoFloatDrift(t *testing.T) {
	e := newTestEngine(5)
	state := models.NewRoundState()
	for i := 0; i < 10; i++ {
		uid := string(rune('a' + i))
		_, err := e.RequestTicket(&state, uid, models.PaymentUSD, "pp")
		require.NoError(t, err)
		_, err = e.ConfirmTicket(&state, adminID, uid)
		require.NoError(t, err)
	}
	assert.Equal(t, 2.5, state.PotUSD)
}

func TestGetTicket(t *testing.T) {
	e := newTestEngine(1)
	state := models.NewRoundState()

	_, err := GetTicket(&state, playerID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.RequestTicket(&state, playerID, models.PaymentRobux, "rb")
	require.NoError(t, err)
	_, err = GetTicket(&state, playerID)
	assert.ErrorIs(t, err, ErrNotFound, "pending tickets look absent")

	_, err = e.ConfirmTicket(&state, adminID, playerID)
	require.NoError(t, err)
	ticket, err := GetTicket(&state, playerID)
	require.NoError(t, err)
	assert.Len(t, ticket.Numbers, NumbersPerTicket)

	ticket.Numbers[0] = 99
	assert.NotEqual(t, 99, state.Tickets[playerID].Numbers[0])
}

func TestPurge(t *testing.T) {
	e := newTestEngine(1)
	state := models.NewRoundState()
	state.Round = 4
	for _, uid := range []string{"b", "a", "c"} {
		_, err := e.RequestTicket(&state, uid, models.PaymentUSD, "pp-"+uid)
		require.NoError(t, err)
	}
	for _, uid := range []string{"b", "a"} {
		_, err := e.ConfirmTicket(&state, adminID, uid)
		require.NoError(t, err)
	}

	archived := e.Purge(&state)
	require.Len(t, archived, 2)
	assert.Equal(t, "a", archived[0].UserID)
	assert.Equal(t, "pp-a", archived[0].Username)
	assert.Equal(t, "b", archived[1].UserID)
	assert.Empty(t, state.Tickets)
	assert.Zero(t, state.PotUSD)
	assert.Zero(t, state.PotRobux)
	assert.Equal(t, 4, state.Round)
}
