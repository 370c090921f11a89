// Package bot is the Discord command surface of the lottery.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bellapacxx/inzo-lotto/config"
	"github.com/bellapacxx/inzo-lotto/game"
	"github.com/bellapacxx/inzo-lotto/services"
	"github.com/bellapacxx/inzo-lotto/utils/logger"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const CommandPrefix = "!"

// Bot routes Discord messages to lottery operations.
type Bot struct {
	session Session
	lottery *services.Lottery
	cfg     config.Config
	log     *zap.SugaredLogger

	opTimeout time.Duration

	mu        sync.Mutex
	selfID    string
	guilds    map[string]struct{}
	purchases map[string]*purchase // key = user id

	readyOnce sync.Once
	onReady   func()
}

// purchase is a dialogue plus where to report its result.
type purchase struct {
	dialogue    *game.Dialogue
	guildID     string
	channelID   string // where !buyticket was typed
	dmChannelID string
}

func New(session Session, lottery *services.Lottery) *Bot {
	return &Bot{
		session:   session,
		lottery:   lottery,
		cfg:       lottery.Config(),
		log:       logger.Named("bot"),
		opTimeout: 30 * time.Second,
		guilds:    make(map[string]struct{}),
		purchases: make(map[string]*purchase),
	}
}

// WhenReady runs fn once, after the first Ready event.
func (b *Bot) WhenReady(fn func()) {
	b.onReady = fn
}

// Register attaches the gateway event handlers.
func (b *Bot) Register(dg *discordgo.Session) {
	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleGuildCreate)
	dg.AddHandler(b.handleGuildDelete)
	dg.AddHandler(b.handleMessageCreate)
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	ids := make([]string, 0, len(r.Guilds))
	for _, g := range r.Guilds {
		ids = append(ids, g.ID)
	}
	b.Ready(r.User.ID, ids)
	b.log.Infow("logged in", "user", r.User.Username, "guilds", len(ids))
}

func (b *Bot) handleGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	b.mu.Lock()
	b.guilds[g.ID] = struct{}{}
	b.mu.Unlock()
}

func (b *Bot) handleGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	b.mu.Lock()
	delete(b.guilds, g.ID)
	b.mu.Unlock()
}

func (b *Bot) handleMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()
	b.HandleMessage(ctx, m.Message)
}

// Ready records the bot's own user id and the guilds it serves.
func (b *Bot) Ready(selfID string, guildIDs []string) {
	b.mu.Lock()
	b.selfID = selfID
	for _, id := range guildIDs {
		b.guilds[id] = struct{}{}
	}
	b.mu.Unlock()

	b.readyOnce.Do(func() {
		if b.onReady != nil {
			b.onReady()
		}
	})
}

// Guilds lists the guilds the bot is in, sorted. Part of services.DrawRunner.
func (b *Bot) Guilds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.guilds))
	for id := range b.guilds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HandleMessage dispatches one incoming message.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	b.mu.Lock()
	self := b.selfID
	b.mu.Unlock()
	if m.Author.ID == self {
		return
	}

	if m.GuildID == "" {
		b.handleDirectMessage(ctx, m)
		return
	}

	cmd, args, ok := parseCommand(m.Content)
	if !ok {
		return
	}

	switch cmd {
	case "buyticket":
		b.buyTicket(ctx, m)
	case "confirmticket":
		b.confirmTicket(ctx, m, args)
	case "myticket":
		b.myTicket(ctx, m)
	case "drawnumbers":
		b.drawNumbers(ctx, m)
	case "results":
		b.results(ctx, m)
	case "lottopurge":
		b.lottoPurge(ctx, m)
	}
}

// parseCommand splits "!name rest of line" into a lower-case name and args.
func parseCommand(content string) (string, string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, CommandPrefix) {
		return "", "", false
	}
	content = strings.TrimPrefix(content, CommandPrefix)
	name, args, _ := strings.Cut(content, " ")
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func (b *Bot) send(channelID, content string) {
	if channelID == "" {
		return
	}
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		b.log.Warnw("send failed", "channel", channelID, "error", err)
	}
}

// dm opens a direct channel with the user and sends content to it.
func (b *Bot) dm(userID, content string) (string, error) {
	ch, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	if _, err := b.session.ChannelMessageSend(ch.ID, content); err != nil {
		return ch.ID, fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	return ch.ID, nil
}

// findChannel returns the guild text channel with the given name.
func (b *Bot) findChannel(guildID, name string) (*discordgo.Channel, bool) {
	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		b.log.Warnw("list channels failed", "guild", guildID, "error", err)
		return nil, false
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch, true
		}
	}
	return nil, false
}

func (b *Bot) channelName(guildID, channelID string) string {
	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		return ""
	}
	for _, ch := range channels {
		if ch.ID == channelID {
			return ch.Name
		}
	}
	return ""
}

func (b *Bot) sendToNamed(guildID, name, content string) bool {
	ch, ok := b.findChannel(guildID, name)
	if !ok {
		return false
	}
	b.send(ch.ID, content)
	return true
}
