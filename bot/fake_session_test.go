package bot

import (
	"errors"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

const (
	guildID      = "g1"
	cmdChannel   = "c-cmd"
	drawChannel  = "c-draw"
	logChannel   = "c-log"
	otherChannel = "c-other"
)

var errFake = errors.New("fake: unavailable")

// fakeSession records everything the bot sends and serves a fixed guild.
type fakeSession struct {
	mu sync.Mutex

	channels []*discordgo.Channel
	members  map[string]*discordgo.Member
	perms    map[string]int64
	history  map[string][]*discordgo.Message // newest first
	sent     map[string][]string
	deleted  []string

	dmBlocked map[string]bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		channels: []*discordgo.Channel{
			{ID: cmdChannel, Name: "lotto-commands", Type: discordgo.ChannelTypeGuildText},
			{ID: drawChannel, Name: "inzo-lotto-result", Type: discordgo.ChannelTypeGuildText},
			{ID: logChannel, Name: "lotto-log", Type: discordgo.ChannelTypeGuildText},
			{ID: otherChannel, Name: "general", Type: discordgo.ChannelTypeGuildText},
		},
		members:   make(map[string]*discordgo.Member),
		perms:     make(map[string]int64),
		history:   make(map[string][]*discordgo.Message),
		sent:      make(map[string][]string),
		dmBlocked: make(map[string]bool),
	}
}

func (f *fakeSession) addMember(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[id] = &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: id, Username: name}}
}

func (f *fakeSession) removeChannel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.channels[:0]
	for _, ch := range f.channels {
		if ch.ID != id {
			kept = append(kept, ch)
		}
	}
	f.channels = kept
}

func (f *fakeSession) messages(channelID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent[channelID]...)
}

func (f *fakeSession) last(channelID string) string {
	msgs := f.messages(channelID)
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.HasPrefix(channelID, "dm-") && f.dmBlocked[strings.TrimPrefix(channelID, "dm-")] {
		return nil, errFake
	}
	f.sent[channelID] = append(f.sent[channelID], content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessages(channelID string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.history[channelID]
	start := 0
	if beforeID != "" {
		start = len(all)
		for i, m := range all {
			if m.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(all))
	return append([]*discordgo.Message(nil), all[start:end]...), nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeSession) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.perms[userID], nil
}

func (f *fakeSession) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*discordgo.Channel(nil), f.channels...), nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, errFake
	}
	return m, nil
}

func (f *fakeSession) GuildMembersSearch(_, query string, limit int, _ ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.Member
	for _, m := range f.members {
		if strings.HasPrefix(strings.ToLower(m.User.Username), strings.ToLower(query)) {
			out = append(out, m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
