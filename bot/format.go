package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bellapacxx/inzo-lotto/game"
	"github.com/bellapacxx/inzo-lotto/models"
	"github.com/shopspring/decimal"
)

var places = []string{"🥇 1st place", "🥈 2nd place", "🥉 3rd place"}

func formatNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func formatUSD(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2) + " USD"
}

func formatRobux(amount int64) string {
	return fmt.Sprintf("%d Robux", amount)
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

func placeLabel(place int) string {
	if place >= 1 && place <= len(places) {
		return places[place-1]
	}
	return fmt.Sprintf("#%d", place)
}

// formatOutcome renders the announcement posted to the results channel.
func formatOutcome(out game.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 **Lotto Draw - Round %d**\nDrawn numbers: %s\n\n", out.Round, formatNumbers(out.Numbers))

	if len(out.Winners) == 0 {
		b.WriteString("⚠️ No winners this round. The pot will roll over to the next round.")
		return b.String()
	}

	for _, w := range out.Winners {
		var won []string
		if w.ShareUSD.IsPositive() {
			won = append(won, formatUSD(w.ShareUSD))
		}
		if w.ShareRobux > 0 {
			won = append(won, formatRobux(w.ShareRobux))
		}
		prize := strings.Join(won, ", ")
		if prize == "" {
			prize = "nothing (empty pot)"
		}
		fmt.Fprintf(&b, "%s: %s - %d matching numbers - Won: %s\n", placeLabel(w.Place), mention(w.UserID), w.Matches, prize)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDrawLog(out game.Outcome) string {
	return fmt.Sprintf("Draw Round %d - Numbers: %s", out.Round, formatNumbers(out.Numbers))
}

func formatResults(res models.DrawSummary) string {
	return fmt.Sprintf("📊 **Lotto Results - Round %d**\nDrawn numbers: %s", res.Round, formatNumbers(res.Numbers))
}

func formatArchived(name string, t game.ArchivedTicket) string {
	return fmt.Sprintf("🎟️ **Discord:** %s | Paid via: **%s** | Username: **%s** | Numbers: `%s`",
		name, t.PaymentMethod, t.Username, formatNumbers(t.Numbers))
}

func paymentPrompt(priceUSD decimal.Decimal, priceRobux int64) string {
	return fmt.Sprintf("Hi! Please reply with your payment method for the ticket:\n"+
		"`usd` for %s\n"+
		"`robux` for %s\n\n"+
		"Reply with `usd` or `robux` (or `cancel` to stop).",
		formatUSD(priceUSD), formatRobux(priceRobux))
}

func usernamePrompt(method models.PaymentMethod) string {
	if method == models.PaymentUSD {
		return "Please provide your PayPal username:"
	}
	return "Please provide your Roblox username:"
}
