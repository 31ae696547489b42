// Package directory is the thin boundary between the ticket engine and the
// Discord REST API.
package directory

import (
	"cmp"
	"errors"
	"net/http"
	"strings"

	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// historyPageSize is the largest page Discord returns for channel messages
const historyPageSize = 100

type Directory interface {
	Channel(channelID string) (*discordgo.Channel, error)
	CreateTextChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error)
	// DeleteChannel treats an already deleted channel as success
	DeleteChannel(channelID, reason string) error
	// History streams every message of the channel to fn, oldest first
	History(channelID string, fn func(*discordgo.Message) error) error
	// Messages returns up to limit of the most recent messages, newest first
	Messages(channelID string, limit int) ([]*discordgo.Message, error)
	SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error)
	CreateThread(channelID, messageID, name string) (*discordgo.Channel, error)
	Roles(guildID string) ([]*discordgo.Role, error)
}

// Session implements Directory on a discordgo session
type Session struct {
	s      *discordgo.Session
	logger *zap.Logger
}

func NewSession(s *discordgo.Session, logger *zap.Logger) *Session {
	return &Session{s: s, logger: logger}
}

func (d *Session) Channel(channelID string) (*discordgo.Channel, error) {
	// State is populated from the gateway so try it before hitting REST
	if d.s.StateEnabled && d.s.State != nil {
		if c, err := d.s.State.Channel(channelID); err == nil {
			return c, nil
		}
	}

	c, err := d.s.Channel(channelID)

	if err != nil {
		return nil, types.NewPlatformError("fetch channel", err)
	}

	return c, nil
}

func (d *Session) CreateTextChannel(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	data.Type = discordgo.ChannelTypeGuildText

	c, err := d.s.GuildChannelCreateComplex(guildID, data)

	if err != nil {
		return nil, types.NewPlatformError("create channel", err)
	}

	return c, nil
}

func (d *Session) DeleteChannel(channelID, reason string) error {
	_, err := d.s.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))

	if err != nil {
		if IsUnknownChannel(err) {
			d.logger.Warn("Channel already deleted", zap.String("channelId", channelID))
			return nil
		}

		return types.NewPlatformError("delete channel", err)
	}

	return nil
}

func (d *Session) History(channelID string, fn func(*discordgo.Message) error) error {
	// Snowflake 0 predates every message, so paging with after walks the channel from its start
	after := "0"

	for {
		msgs, err := d.s.ChannelMessages(channelID, historyPageSize, "", after, "")

		if err != nil {
			return types.NewPlatformError("fetch history", err)
		}

		slices.SortFunc(msgs, func(a, b *discordgo.Message) int {
			return CompareSnowflakes(a.ID, b.ID)
		})

		for _, msg := range msgs {
			if err := fn(msg); err != nil {
				return err
			}
		}

		if len(msgs) < historyPageSize {
			return nil
		}

		after = msgs[len(msgs)-1].ID
	}
}

func (d *Session) Messages(channelID string, limit int) ([]*discordgo.Message, error) {
	msgs, err := d.s.ChannelMessages(channelID, limit, "", "", "")

	if err != nil {
		return nil, types.NewPlatformError("fetch messages", err)
	}

	return msgs, nil
}

func (d *Session) SendMessage(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageSendComplex(channelID, data)

	if err != nil {
		return nil, types.NewPlatformError("send message", err)
	}

	return m, nil
}

func (d *Session) EditMessage(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessageEditComplex(edit)

	if err != nil {
		return nil, types.NewPlatformError("edit message", err)
	}

	return m, nil
}

func (d *Session) CreateThread(channelID, messageID, name string) (*discordgo.Channel, error) {
	c, err := d.s.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: 10080,
	})

	if err != nil {
		return nil, types.NewPlatformError("create thread", err)
	}

	return c, nil
}

func (d *Session) Roles(guildID string) ([]*discordgo.Role, error) {
	if d.s.StateEnabled && d.s.State != nil {
		if g, err := d.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g.Roles, nil
		}
	}

	roles, err := d.s.GuildRoles(guildID)

	if err != nil {
		return nil, types.NewPlatformError("fetch roles", err)
	}

	return roles, nil
}

// FindRole matches a configured role by ID first, then by exact name
func FindRole(roles []*discordgo.Role, nameOrID string) *discordgo.Role {
	for _, r := range roles {
		if r.ID == nameOrID {
			return r
		}
	}

	for _, r := range roles {
		if r.Name == nameOrID {
			return r
		}
	}

	return nil
}

// CompareSnowflakes orders two decimal snowflakes without parsing them
func CompareSnowflakes(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}

	return strings.Compare(a, b)
}

func IsUnknownChannel(err error) bool {
	var restErr *discordgo.RESTError

	if !errors.As(err, &restErr) {
		return false
	}

	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}

	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
