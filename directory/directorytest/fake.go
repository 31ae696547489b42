// Package directorytest provides an in-memory Directory for tests.
package directorytest

import (
	"errors"
	"strconv"
	"sync"
	"unicode/utf8"

	"panel-tickets/directory"

	"github.com/bwmarrin/discordgo"
)

var ErrRejected = errors.New("rejected by fake directory")

type SentMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
	Message   *discordgo.Message
}

type DeletedChannel struct {
	ChannelID string
	Reason    string
}

type CreatedThread struct {
	ChannelID string
	MessageID string
	Name      string
	Thread    *discordgo.Channel
}

// Fake records every call. Fail* fields make the matching call return ErrRejected.
type Fake struct {
	mu sync.Mutex

	Channels  map[string]*discordgo.Channel
	Histories map[string][]*discordgo.Message
	GuildRole map[string][]*discordgo.Role

	Created []discordgo.GuildChannelCreateData
	Deleted []DeletedChannel
	Sent    []SentMessage
	Edited  []*discordgo.MessageEdit
	Threads []CreatedThread

	FailCreate  bool
	FailDelete  bool
	FailHistory bool
	FailSend    bool
	FailThread  bool

	// MaxDescription rejects sends with a longer embed description, like Discord does
	MaxDescription int
	// RejectSend makes SendMessage fail for the sends it returns true for
	RejectSend func(data *discordgo.MessageSend) bool

	// BeforeThread runs inside CreateThread, before the thread exists
	BeforeThread func()

	nextID int
}

var _ directory.Directory = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Channels:  map[string]*discordgo.Channel{},
		Histories: map[string][]*discordgo.Message{},
		GuildRole: map[string][]*discordgo.Role{},
		nextID:    1000,
	}
}

func (f *Fake) id() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *Fake) AddChannel(c *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Channels[c.ID] = c
}

// Mutations counts calls that would change platform state
func (f *Fake) Mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Created) + len(f.Deleted) + len(f.Sent) + len(f.Edited) + len(f.Threads)
}

func (f *Fake) SentTo(channelID string) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []SentMessage
	for _, s := range f.Sent {
		if s.ChannelID == channelID {
			out = append(out, s)
		}
	}
	return out
}

func (f *Fake) Channel(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.Channels[channelID]
	if !ok {
		return nil, ErrRejected
	}
	return c, nil
}

func (f *Fake) CreateTextChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailCreate {
		return nil, ErrRejected
	}

	f.Created = append(f.Created, data)

	c := &discordgo.Channel{
		ID:                   f.id(),
		GuildID:              guildID,
		Name:                 data.Name,
		Topic:                data.Topic,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.Channels[c.ID] = c

	return c, nil
}

func (f *Fake) DeleteChannel(channelID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailDelete {
		return ErrRejected
	}

	f.Deleted = append(f.Deleted, DeletedChannel{ChannelID: channelID, Reason: reason})
	delete(f.Channels, channelID)

	return nil
}

func (f *Fake) History(channelID string, fn func(*discordgo.Message) error) error {
	f.mu.Lock()
	if f.FailHistory {
		f.mu.Unlock()
		return ErrRejected
	}
	msgs := append([]*discordgo.Message(nil), f.Histories[channelID]...)
	f.mu.Unlock()

	for _, m := range msgs {
		if err := fn(m); err != nil {
			return err
		}
	}

	return nil
}

func (f *Fake) Messages(channelID string, limit int) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*discordgo.Message
	for _, s := range f.Sent {
		if s.ChannelID == channelID {
			out = append([]*discordgo.Message{s.Message}, out...)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *Fake) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSend || (f.RejectSend != nil && f.RejectSend(data)) {
		return nil, ErrRejected
	}

	if f.MaxDescription > 0 {
		for _, e := range data.Embeds {
			if utf8.RuneCountInString(e.Description) > f.MaxDescription {
				return nil, ErrRejected
			}
		}
	}

	m := &discordgo.Message{
		ID:         f.id(),
		ChannelID:  channelID,
		Content:    data.Content,
		Embeds:     data.Embeds,
		Components: data.Components,
		Author:     &discordgo.User{ID: "bot", Bot: true},
	}
	f.Sent = append(f.Sent, SentMessage{ChannelID: channelID, Data: data, Message: m})

	return m, nil
}

func (f *Fake) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Edited = append(f.Edited, edit)

	return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
}

func (f *Fake) CreateThread(channelID, messageID, name string) (*discordgo.Channel, error) {
	if f.BeforeThread != nil {
		f.BeforeThread()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailThread {
		return nil, ErrRejected
	}

	thread := &discordgo.Channel{
		ID:       f.id(),
		Name:     name,
		ParentID: channelID,
		Type:     discordgo.ChannelTypeGuildPublicThread,
	}
	f.Channels[thread.ID] = thread
	f.Threads = append(f.Threads, CreatedThread{ChannelID: channelID, MessageID: messageID, Name: name, Thread: thread})

	return thread, nil
}

func (f *Fake) Roles(guildID string) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.GuildRole[guildID], nil
}
