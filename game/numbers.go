package game

import (
	"sort"
)

const (
	NumbersPerTicket = 5
	MinNumber        = 1
	MaxNumber        = 50
)

// GenerateNumbers draws NumbersPerTicket distinct values from
// [MinNumber, MaxNumber] uniformly without replacement, sorted ascending.
func (e *Engine) GenerateNumbers() []int {
	e.rngMu.Lock()
	perm := e.rng.Perm(MaxNumber - MinNumber + 1)
	e.rngMu.Unlock()

	nums := make([]int, NumbersPerTicket)
	for i := range nums {
		nums[i] = perm[i] + MinNumber
	}
	sort.Ints(nums)
	return nums
}

// CountMatches returns how many of the ticket numbers were drawn.
func CountMatches(ticket, drawn []int) int {
	drawnSet := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		drawnSet[n] = true
	}
	seen := make(map[int]bool, len(ticket))
	matches := 0
	for _, n := range ticket {
		if drawnSet[n] && !seen[n] {
			matches++
		}
		seen[n] = true
	}
	return matches
}

// ValidNumbers reports whether nums is a well formed ticket.
func ValidNumbers(nums []int) bool {
	if len(nums) != NumbersPerTicket {
		return false
	}
	seen := make(map[int]bool, len(nums))
	for _, n := range nums {
		if n < MinNumber || n > MaxNumber || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}
