package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bellapacxx/inzo-lotto/game"
	"github.com/bwmarrin/discordgo"
)

const (
	purgeScanLimit = 200
	purgePageSize  = 100
)

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

func (b *Bot) confirmTicket(ctx context.Context, m *discordgo.Message, args string) {
	if !b.lottery.IsAdmin(m.Author.ID) {
		b.send(m.ChannelID, "❌ Only admins can confirm tickets.")
		return
	}
	if args == "" {
		b.send(m.ChannelID, "❌ Please mention a user, e.g. `!confirmticket @user`.")
		return
	}

	member, err := b.resolveMember(m.GuildID, args)
	if err != nil {
		b.log.Infow("confirm target not found", "query", args, "error", err)
		b.send(m.ChannelID, fmt.Sprintf("❌ Could not find user: %s", args))
		return
	}

	ticket, err := b.lottery.ConfirmTicket(ctx, m.Author.ID, member.User.ID)
	switch {
	case errors.Is(err, game.ErrAlreadyConfirmed):
		b.send(m.ChannelID, "✅ This ticket is already confirmed.")
		return
	case err != nil:
		b.send(m.ChannelID, replyFor(err, b.cfg.MinPlayers))
		return
	}
	b.send(m.ChannelID, fmt.Sprintf("🎟️ Ticket confirmed for %s! Your numbers are: %s",
		mention(member.User.ID), formatNumbers(ticket.Numbers)))
}

// resolveMember accepts a mention, a raw user id or a member name.
func (b *Bot) resolveMember(guildID, query string) (*discordgo.Member, error) {
	query = strings.TrimSpace(query)
	id := query
	if sm := mentionPattern.FindStringSubmatch(query); sm != nil {
		id = sm[1]
	}
	if isSnowflake(id) {
		member, err := b.session.GuildMember(guildID, id)
		if err == nil && member != nil && member.User != nil {
			return member, nil
		}
	}

	name := strings.TrimPrefix(query, "@")
	members, err := b.session.GuildMembersSearch(guildID, name, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTargetResolution, err)
	}
	for _, mb := range members {
		if mb.User == nil {
			continue
		}
		if strings.EqualFold(mb.User.Username, name) || strings.EqualFold(mb.Nick, name) || strings.EqualFold(mb.User.GlobalName, name) {
			return mb, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTargetResolution, query)
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (b *Bot) myTicket(ctx context.Context, m *discordgo.Message) {
	ticket, err := b.lottery.MyTicket(ctx, m.Author.ID)
	if err != nil {
		b.send(m.ChannelID, replyFor(err, b.cfg.MinPlayers))
		return
	}
	b.send(m.ChannelID, "🎟️ Your ticket numbers: "+formatNumbers(ticket.Numbers))
}

func (b *Bot) drawNumbers(ctx context.Context, m *discordgo.Message) {
	if !b.lottery.IsAdmin(m.Author.ID) {
		b.send(m.ChannelID, "❌ Only admins can start the draw.")
		return
	}
	b.drawForGuild(ctx, m.GuildID, true)
}

// RunScheduledDraw is the unattended draw. Part of services.DrawRunner.
func (b *Bot) RunScheduledDraw(ctx context.Context, guildID string) {
	b.drawForGuild(ctx, guildID, false)
}

func (b *Bot) drawForGuild(ctx context.Context, guildID string, manual bool) {
	out, err := b.lottery.Draw(ctx, manual)
	if err != nil {
		if errors.Is(err, game.ErrInsufficientPlayers) {
			b.sendToNamed(guildID, b.cfg.CommandChannel, replyFor(err, b.cfg.MinPlayers))
			return
		}
		b.log.Errorw("draw failed", "guild", guildID, "manual", manual, "error", err)
		return
	}

	announced := b.sendToNamed(guildID, b.cfg.DrawChannel, formatOutcome(out))
	if !announced {
		announced = b.sendToNamed(guildID, b.cfg.CommandChannel, formatOutcome(out))
	}
	if !announced {
		b.log.Warnw("no channel to announce draw", "guild", guildID, "round", out.Round)
	}
	b.sendToNamed(guildID, b.cfg.LogChannel, formatDrawLog(out))
}

func (b *Bot) results(ctx context.Context, m *discordgo.Message) {
	if !b.lottery.IsAdmin(m.Author.ID) {
		b.send(m.ChannelID, "❌ Only admins can view the results.")
		return
	}
	res, err := b.lottery.Results(ctx)
	if err != nil {
		if errors.Is(err, game.ErrNoResults) {
			b.send(m.ChannelID, replyFor(err, b.cfg.MinPlayers))
			return
		}
		b.log.Errorw("load results failed", "error", err)
		return
	}
	if !b.sendToNamed(m.GuildID, b.cfg.DrawChannel, formatResults(res)) {
		b.send(m.ChannelID, formatResults(res))
	}
}

func (b *Bot) lottoPurge(ctx context.Context, m *discordgo.Message) {
	perms, err := b.session.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil || perms&discordgo.PermissionAdministrator == 0 {
		b.send(m.ChannelID, "❌ You need the Administrator permission to do that.")
		return
	}

	commands, ok := b.findChannel(m.GuildID, b.cfg.CommandChannel)
	if !ok {
		b.send(m.ChannelID, fmt.Sprintf("❌ Channel `#%s` not found.", b.cfg.CommandChannel))
		return
	}
	logCh, ok := b.findChannel(m.GuildID, b.cfg.LogChannel)
	if !ok {
		b.send(m.ChannelID, fmt.Sprintf("❌ Channel `#%s` not found.", b.cfg.LogChannel))
		return
	}

	deleted := b.clearChannel(commands.ID)
	b.send(m.ChannelID, fmt.Sprintf("🧹 Deleted %d messages in #%s.", deleted, b.cfg.CommandChannel))

	archived, err := b.lottery.Purge(ctx)
	if err != nil {
		b.log.Errorw("purge failed", "guild", m.GuildID, "error", err)
		b.send(m.ChannelID, replyFor(err, b.cfg.MinPlayers))
		return
	}

	if len(archived) == 0 {
		b.send(logCh.ID, "ℹ️ No tickets were purchased this round.")
		return
	}
	b.send(logCh.ID, "📥 **Tickets this round (before purge):**")
	for _, t := range archived {
		b.send(logCh.ID, formatArchived(b.memberName(m.GuildID, t.UserID), t))
	}
}

// clearChannel deletes up to purgeScanLimit of the newest unpinned messages.
func (b *Bot) clearChannel(channelID string) int {
	deleted, scanned := 0, 0
	before := ""
	for scanned < purgeScanLimit {
		limit := min(purgePageSize, purgeScanLimit-scanned)
		page, err := b.session.ChannelMessages(channelID, limit, before, "", "")
		if err != nil {
			b.log.Warnw("fetch history failed", "channel", channelID, "error", err)
			break
		}
		if len(page) == 0 {
			break
		}
		for _, msg := range page {
			scanned++
			before = msg.ID
			if msg.Pinned {
				continue
			}
			if err := b.session.ChannelMessageDelete(channelID, msg.ID); err != nil {
				b.log.Warnw("delete message failed", "channel", channelID, "message", msg.ID, "error", err)
				continue
			}
			deleted++
		}
		if len(page) < limit {
			break
		}
	}
	return deleted
}

func (b *Bot) memberName(guildID, userID string) string {
	member, err := b.session.GuildMember(guildID, userID)
	if err != nil || member == nil || member.User == nil {
		return "Unknown User"
	}
	return member.User.Username
}
