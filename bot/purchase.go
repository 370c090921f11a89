package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bellapacxx/inzo-lotto/game"
	"github.com/bwmarrin/discordgo"
)

// buyTicket starts the DM dialogue that collects payment details.
func (b *Bot) buyTicket(ctx context.Context, m *discordgo.Message) {
	if b.channelName(m.GuildID, m.ChannelID) != b.cfg.CommandChannel {
		b.send(m.ChannelID, fmt.Sprintf("❌ Please use this command in #%s.", b.cfg.CommandChannel))
		return
	}

	userID := m.Author.ID
	if err := b.lottery.CheckEligible(ctx, userID); err != nil {
		b.send(m.ChannelID, replyFor(err, b.cfg.MinPlayers))
		return
	}

	// The slot is claimed under one lock, before the DM goes out.
	p := &purchase{guildID: m.GuildID, channelID: m.ChannelID}
	p.dialogue = game.NewDialogue(userID, b.cfg.ReplyTimeout, func(userID string, step game.DialogueState) {
		b.purchaseTimedOut(userID, p, step)
	})
	b.mu.Lock()
	if cur, ok := b.purchases[userID]; ok && cur.dialogue.State().Open() {
		b.mu.Unlock()
		b.send(m.ChannelID, "❌ You already have a ticket request in progress. Check your DMs.")
		return
	}
	b.purchases[userID] = p
	b.mu.Unlock()

	rules := b.lottery.Config()
	dmChannelID, err := b.dm(userID, paymentPrompt(rules.TicketPriceUSD, rules.TicketPriceRobux))
	if err != nil {
		b.forget(userID, p)
		p.dialogue.Abort()
		b.log.Infow("dm failed", "user_id", userID, "error", err)
		b.send(m.ChannelID, replyFor(err, b.cfg.MinPlayers))
		return
	}
	p.dmChannelID = dmChannelID
	p.dialogue.Start()
}

// handleDirectMessage feeds a DM into the sender's open purchase, if any.
func (b *Bot) handleDirectMessage(ctx context.Context, m *discordgo.Message) {
	userID := m.Author.ID
	b.mu.Lock()
	p, ok := b.purchases[userID]
	b.mu.Unlock()
	if !ok {
		return
	}

	state, err := p.dialogue.Feed(m.Content)
	switch {
	case errors.Is(err, game.ErrUnrecognizedMethod), errors.Is(err, game.ErrEmptyUsername):
		return
	case errors.Is(err, game.ErrDialogueClosed):
		b.forget(userID, p)
		return
	}

	switch state {
	case game.AwaitingUsername:
		b.send(m.ChannelID, usernamePrompt(p.dialogue.Method()))
	case game.Aborted:
		b.forget(userID, p)
		b.send(m.ChannelID, "Ticket request cancelled.")
	case game.Complete:
		b.forget(userID, p)
		b.completePurchase(ctx, p)
	}
}

func (b *Bot) completePurchase(ctx context.Context, p *purchase) {
	details, ok := p.dialogue.Purchase()
	if !ok {
		return
	}
	if _, err := b.lottery.RequestTicket(ctx, details.UserID, details.Method, details.Username); err != nil {
		b.log.Infow("ticket request rejected", "user_id", details.UserID, "error", err)
		b.send(p.channelID, replyFor(err, b.cfg.MinPlayers))
		return
	}

	admins := make([]string, len(b.cfg.AdminIDs))
	for i, id := range b.cfg.AdminIDs {
		admins[i] = mention(id)
	}
	b.send(p.channelID, fmt.Sprintf(
		"✅ Ticket requested! Admins %s, please confirm payment with `!confirmticket @user`.\nPayment: %s, Username: %s",
		strings.Join(admins, " "), strings.ToUpper(string(details.Method)), details.Username))
}

// purchaseTimedOut is the dialogue timeout callback. A dialogue that was
// already replaced or closed reports nothing.
func (b *Bot) purchaseTimedOut(userID string, p *purchase, step game.DialogueState) {
	if !b.forget(userID, p) {
		return
	}

	b.log.Infow("purchase timed out", "user_id", userID, "error", game.TimeoutError(step))
	if step == game.AwaitingMethod {
		b.send(p.channelID, "❌ Payment method timed out. Please try again.")
	} else {
		b.send(p.channelID, "❌ Username input timed out. Please try again.")
	}
}

// forget drops p if it is still the user's current purchase.
func (b *Bot) forget(userID string, p *purchase) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.purchases[userID]; ok && cur == p {
		delete(b.purchases, userID)
		return true
	}
	return false
}

// Close aborts every open purchase so no timeout fires during shutdown.
func (b *Bot) Close() {
	b.mu.Lock()
	open := make([]*purchase, 0, len(b.purchases))
	for uid, p := range b.purchases {
		open = append(open, p)
		delete(b.purchases, uid)
	}
	b.mu.Unlock()

	for _, p := range open {
		p.dialogue.Abort()
	}
}

// openPurchases counts dialogues still waiting for a reply.
func (b *Bot) openPurchases() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, p := range b.purchases {
		if p.dialogue.State().Open() {
			n++
		}
	}
	return n
}
