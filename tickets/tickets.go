// Package tickets opens ticket channels and closes them into an archived,
// paginated transcript.
package tickets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"panel-tickets/directory"
	"panel-tickets/gate"
	"panel-tickets/ledger"
	"panel-tickets/transcript"
	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/infinitybotlist/eureka/crypto"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigFastest

const (
	OpenCustomID  = "ticket_open"
	CloseCustomID = "ticket_close"

	CloseReason = "ticket closed"

	topicPrefix = "Ticket for "

	requesterAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionAttachFiles |
		discordgo.PermissionEmbedLinks

	supportAllow = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionManageMessages
)

var topicUser = regexp.MustCompile(`\((\d+)\)$`)

type OpenRequest struct {
	GuildID        string
	PanelChannelID string
	User           *discordgo.User
	Member         *discordgo.Member
}

type CloseRequest struct {
	ChannelID   string
	CloseUserID string
}

type CloseResult struct {
	ArchiveMessage *discordgo.Message // nil when archive posting was skipped
	MessageCount   int
	Pages          int
}

type Controller struct {
	dir    directory.Directory
	gates  gate.Store
	ledger ledger.Ledger
	config *types.Config
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	tickets map[string]*types.Ticket
}

func NewController(dir directory.Directory, gates gate.Store, ledg ledger.Ledger, config *types.Config, logger *zap.Logger) *Controller {
	if ledg == nil {
		ledg = ledger.Nop{}
	}

	return &Controller{
		dir:     dir,
		gates:   gates,
		ledger:  ledg,
		config:  config,
		logger:  logger,
		now:     time.Now,
		tickets: map[string]*types.Ticket{},
	}
}

// ChannelName is "ticket-<name>" lowercased with spaces turned into hyphens
func ChannelName(displayName string) string {
	return strings.ReplaceAll(strings.ToLower("ticket-"+displayName), " ", "-")
}

func Topic(displayName, userID string) string {
	return topicPrefix + displayName + " (" + userID + ")"
}

// TopicUserID extracts the requester from a ticket channel topic
func TopicUserID(topic string) (string, bool) {
	if !strings.HasPrefix(topic, topicPrefix) {
		return "", false
	}

	m := topicUser.FindStringSubmatch(topic)

	if m == nil {
		return "", false
	}

	return m[1], true
}

func CloseComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Close ticket",
					Style:    discordgo.DangerButton,
					CustomID: CloseCustomID,
				},
			},
		},
	}
}

// Ticket returns the tracked ticket for channelID, if any
func (c *Controller) Ticket(channelID string) (types.Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tickets[channelID]
	if !ok {
		return types.Ticket{}, false
	}
	return *t, true
}

func (c *Controller) overwrites(guildID, userID string) []*discordgo.PermissionOverwrite {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// The @everyone role shares the guild ID
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    userID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: requesterAllow,
		},
	}

	if len(c.config.SupportRoles.Roles) == 0 {
		return overwrites
	}

	roles, err := c.dir.Roles(guildID)

	if err != nil {
		c.logger.Error("Error fetching guild roles", zap.Error(err), zap.String("guildId", guildID))
		return overwrites
	}

	seen := map[string]bool{}

	for _, name := range c.config.SupportRoles.Roles {
		role := directory.FindRole(roles, name)

		if role == nil {
			c.logger.Warn("Support role not found", zap.String("role", name), zap.String("guildId", guildID))
			continue
		}

		if seen[role.ID] {
			continue
		}
		seen[role.ID] = true

		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: supportAllow,
		})
	}

	return overwrites
}

// Open creates the private ticket channel for a panel request
func (c *Controller) Open(ctx context.Context, req OpenRequest) (*types.Ticket, error) {
	if !c.config.IsPanel(req.PanelChannelID) {
		return nil, types.ErrUnauthorizedPanel
	}

	if req.User == nil || req.GuildID == "" {
		return nil, types.ErrInvalidChannel
	}

	name := transcript.DisplayName(req.User, req.Member)

	data := discordgo.GuildChannelCreateData{
		Name:                 ChannelName(name),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                Topic(name, req.User.ID),
		PermissionOverwrites: c.overwrites(req.GuildID, req.User.ID),
	}

	// Tickets land in the same category as the panel they were opened from
	if panel, err := c.dir.Channel(req.PanelChannelID); err == nil {
		data.ParentID = panel.ParentID
	} else {
		c.logger.Warn("Error fetching panel channel", zap.Error(err), zap.String("channelId", req.PanelChannelID))
	}

	ch, err := c.dir.CreateTextChannel(req.GuildID, data)

	if err != nil {
		return nil, err
	}

	t := &types.Ticket{
		ID:          crypto.RandString(32),
		GuildID:     req.GuildID,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		UserID:      req.User.ID,
		PanelID:     req.PanelChannelID,
		CreatedAt:   c.now().UTC(),
		State:       types.TicketOpen,
	}

	c.mu.Lock()
	c.tickets[ch.ID] = t
	c.mu.Unlock()

	c.logger.Info("Ticket opened", zap.String("ticketId", t.ID), zap.String("channelId", ch.ID), zap.String("userId", t.UserID), zap.String("panelId", t.PanelID))

	_, err = c.dir.SendMessage(ch.ID, &discordgo.MessageSend{
		Content:    req.User.Mention() + " your ticket has been created.",
		Components: CloseComponents(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{req.User.ID},
		},
	})

	if err != nil {
		c.logger.Error("Error sending ticket welcome message", zap.Error(err), zap.String("channelId", ch.ID))
	}

	if err := c.ledger.Opened(ctx, t); err != nil {
		c.logger.Error("Error recording ticket", zap.Error(err), zap.String("ticketId", t.ID))
	}

	ticket := *t
	return &ticket, nil
}

// Forget drops a ticket whose channel was deleted outside Close
func (c *Controller) Forget(channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tickets[channelID]
	if !ok {
		return false
	}

	delete(c.tickets, channelID)
	c.logger.Info("Ticket channel deleted", zap.String("ticketId", t.ID), zap.String("channelId", channelID), zap.String("state", t.State.String()))

	return true
}

// begin validates channelID as a ticket and moves it to closing
func (c *Controller) begin(channelID string) (*types.Ticket, error) {
	c.mu.Lock()
	t, tracked := c.tickets[channelID]

	if tracked {
		defer c.mu.Unlock()

		if t.State != types.TicketOpen {
			return nil, types.ErrTicketClosing
		}

		t.State = types.TicketClosing
		return t, nil
	}
	c.mu.Unlock()

	// Not opened by this process, so recognise it from the platform
	ch, err := c.dir.Channel(channelID)

	if err != nil || ch.Type != discordgo.ChannelTypeGuildText {
		return nil, types.ErrInvalidChannel
	}

	userID, ok := TopicUserID(ch.Topic)

	if !ok {
		return nil, types.ErrInvalidChannel
	}

	created, err := discordgo.SnowflakeTimestamp(ch.ID)

	if err != nil {
		created = time.Time{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another close may have registered it while we were fetching
	if t, ok := c.tickets[channelID]; ok {
		if t.State != types.TicketOpen {
			return nil, types.ErrTicketClosing
		}
		t.State = types.TicketClosing
		return t, nil
	}

	t = &types.Ticket{
		GuildID:     ch.GuildID,
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		UserID:      userID,
		CreatedAt:   created.UTC(),
		State:       types.TicketClosing,
	}
	c.tickets[channelID] = t

	return t, nil
}

func (c *Controller) history(channelID string) ([]transcript.Entry, error) {
	var entries []transcript.Entry

	err := c.dir.History(channelID, func(msg *discordgo.Message) error {
		entries = append(entries, transcript.FromMessage(msg))
		return nil
	})

	return entries, err
}

// Close archives the ticket transcript and deletes the channel. Only a failed
// deletion is returned as an error; history and archive failures are logged
// and the channel is deleted regardless.
func (c *Controller) Close(ctx context.Context, req CloseRequest) (*CloseResult, error) {
	t, err := c.begin(req.ChannelID)

	if err != nil {
		return nil, err
	}

	closedAt := c.now().UTC()
	res := &CloseResult{}

	entries, err := c.history(t.ChannelID)

	if err != nil {
		c.logger.Error("Error fetching ticket history, skipping archive", zap.Error(err), zap.String("channelId", t.ChannelID))
	} else {
		pages := transcript.Build(entries, c.config.Transcripts.PageBudget)
		res.MessageCount = len(entries)
		res.Pages = len(pages)
		res.ArchiveMessage = c.archive(ctx, t, req.CloseUserID, closedAt, entries, pages)
	}

	err = c.dir.DeleteChannel(t.ChannelID, CloseReason)

	if err != nil {
		c.logger.Error("Error deleting ticket channel", zap.Error(err), zap.String("channelId", t.ChannelID))

		c.mu.Lock()
		t.State = types.TicketOpen
		c.mu.Unlock()

		var perr *types.PlatformError
		if !errors.As(err, &perr) {
			err = types.NewPlatformError("delete channel", err)
		}

		return res, err
	}

	c.mu.Lock()
	t.State = types.TicketClosed
	delete(c.tickets, t.ChannelID)
	c.mu.Unlock()

	c.logger.Info("Ticket closed", zap.String("ticketId", t.ID), zap.String("channelId", t.ChannelID), zap.String("closeUserId", req.CloseUserID), zap.Int("messages", res.MessageCount))

	err = c.ledger.Closed(ctx, types.ClosedTicket{
		TicketID:     t.ID,
		ChannelID:    t.ChannelID,
		CloseUserID:  req.CloseUserID,
		ClosedAt:     closedAt,
		MessageCount: res.MessageCount,
	})

	if err != nil {
		c.logger.Error("Error recording ticket close", zap.Error(err), zap.String("channelId", t.ChannelID))
	}

	return res, nil
}

// SummaryEmbed is the archive header posted above the transcript button
func SummaryEmbed(t *types.Ticket, closeUserID string, closedAt time.Time, messageCount int) *discordgo.MessageEmbed {
	desc := "**Channel:** <#" + t.ChannelID + ">\n" +
		"**Opened:** " + t.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC") + "\n" +
		"**Closed by:** <@" + closeUserID + ">\n" +
		"**Closed:** " + closedAt.UTC().Format("2006-01-02 15:04:05 UTC") + "\n" +
		fmt.Sprintf("**Messages:** %d", messageCount)

	// Tickets recovered after a restart have no ledger id
	footer := "Channel ID: " + t.ChannelID
	if t.ID != "" {
		footer = "Ticket ID: " + t.ID + " | " + footer
	}

	return &discordgo.MessageEmbed{
		Title:       "Ticket Transcript",
		Type:        discordgo.EmbedTypeRich,
		Description: desc,
		Color:       gate.Color,
		Timestamp:   closedAt.UTC().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: footer,
		},
	}
}

func (c *Controller) archive(ctx context.Context, t *types.Ticket, closeUserID string, closedAt time.Time, entries []transcript.Entry, pages []types.TranscriptPage) *discordgo.Message {
	dest, err := c.dir.Channel(c.config.Channels.TranscriptChannel)

	if err != nil || dest.Type != discordgo.ChannelTypeGuildText {
		c.logger.Warn("Transcript channel is not a text channel, skipping archive", zap.String("channelId", c.config.Channels.TranscriptChannel), zap.String("ticketChannelId", t.ChannelID))
		return nil
	}

	send := &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{SummaryEmbed(t, closeUserID, closedAt, len(entries))},
		Components: gate.Components(false),
	}

	if c.config.Transcripts.AttachFile {
		file, err := c.transcriptFile(t, closeUserID, closedAt, entries, pages)

		if err != nil {
			c.logger.Error("Error marshalling transcript", zap.Error(err), zap.String("channelId", t.ChannelID))
		} else {
			send.Files = []*discordgo.File{file}
		}
	}

	m, err := c.dir.SendMessage(dest.ID, send)

	if err != nil {
		c.logger.Error("Error sending transcript to archive channel", zap.Error(err), zap.String("channelId", t.ChannelID))
		return nil
	}

	err = c.gates.Put(ctx, &gate.Gate{
		MessageID:   m.ID,
		ChannelName: t.ChannelName,
		Pages:       pages,
	})

	if err != nil {
		c.logger.Error("Error storing transcript gate", zap.Error(err), zap.String("messageId", m.ID))
	}

	return m
}

func (c *Controller) transcriptFile(t *types.Ticket, closeUserID string, closedAt time.Time, entries []transcript.Entry, pages []types.TranscriptPage) (*discordgo.File, error) {
	messages := make([]types.Message, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, e.Message())
	}

	data, err := json.Marshal(types.FileTranscriptData{
		TicketID:    t.ID,
		UserID:      t.UserID,
		CloseUserID: closeUserID,
		ChannelID:   t.ChannelID,
		ChannelName: t.ChannelName,
		OpenedAt:    t.CreatedAt,
		ClosedAt:    closedAt,
		Messages:    messages,
		Pages:       pages,
	})

	if err != nil {
		return nil, err
	}

	return &discordgo.File{
		Name:        t.ChannelName + ".transcript.json",
		ContentType: "application/json",
		Reader:      bytes.NewReader(data),
	}, nil
}
