// Package panels keeps the ticket and moderator panels posted.
package panels

import (
	"panel-tickets/directory"
	"panel-tickets/tickets"
	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	ModPanelTitle = "Moderation Panel"

	ConfigCustomID       = "panel_config"
	CommandsCustomID     = "panel_commands"
	QuickActionsCustomID = "panel_quick_actions"

	ModColor = 0x3B82F6

	// How far back to look for an existing panel
	scanDepth = 25
)

func TicketPanel() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Ticket Center",
				Type:        discordgo.EmbedTypeRich,
				Description: "Click the button below to open a ticket.",
				Color:       0x5865F2,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Open ticket",
						Style:    discordgo.SuccessButton,
						CustomID: tickets.OpenCustomID,
					},
				},
			},
		},
	}
}

func ModeratorPanel() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       ModPanelTitle,
				Type:        discordgo.EmbedTypeRich,
				Description: "Use the buttons and the menu to view settings and run quick actions.",
				Color:       ModColor,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Bot settings",
						Style:    discordgo.PrimaryButton,
						CustomID: ConfigCustomID,
					},
					discordgo.Button{
						Label:    "Moderation commands",
						Style:    discordgo.SecondaryButton,
						CustomID: CommandsCustomID,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.SelectMenu{
						CustomID:    QuickActionsCustomID,
						Placeholder: "Quick actions",
						Options: []discordgo.SelectMenuOption{
							{Label: "Purge 10 messages", Value: "purge_10"},
							{Label: "Purge 25 messages", Value: "purge_25"},
							{Label: "Lock channel", Value: "lock"},
							{Label: "Unlock channel", Value: "unlock"},
							{Label: "Slowmode 5s", Value: "slowmode_5"},
							{Label: "Slowmode off", Value: "slowmode_0"},
						},
					},
				},
			},
		},
	}
}

type Poster struct {
	dir    directory.Directory
	config *types.Config
	logger *zap.Logger
}

func NewPoster(dir directory.Directory, config *types.Config, logger *zap.Logger) *Poster {
	return &Poster{dir: dir, config: config, logger: logger}
}

func (p *Poster) textChannel(channelID string) bool {
	c, err := p.dir.Channel(channelID)

	if err != nil || c.Type != discordgo.ChannelTypeGuildText {
		p.logger.Warn("Panel channel is not a text channel", zap.String("channelId", channelID))
		return false
	}

	return true
}

// EnsureTicketPanels posts the open ticket panel where no bot message with components exists yet
func (p *Poster) EnsureTicketPanels(botID string) {
	for _, channelID := range p.config.Panels.ChannelIDs {
		if !p.textChannel(channelID) {
			continue
		}

		msgs, err := p.dir.Messages(channelID, scanDepth)

		if err != nil {
			p.logger.Error("Error fetching panel messages", zap.Error(err), zap.String("channelId", channelID))
			continue
		}

		found := false
		for _, m := range msgs {
			if m.Author != nil && m.Author.ID == botID && len(m.Components) > 0 {
				found = true
				break
			}
		}

		if found {
			continue
		}

		if _, err := p.dir.SendMessage(channelID, TicketPanel()); err != nil {
			p.logger.Error("Error sending ticket panel", zap.Error(err), zap.String("channelId", channelID))
			continue
		}

		p.logger.Info("Ticket panel posted", zap.String("channelId", channelID))
	}
}

// EnsureModeratorPanel posts the moderator panel unless one is already there
func (p *Poster) EnsureModeratorPanel(botID string) {
	channelID := p.config.ModPanelChannelID()

	if channelID == "" || !p.textChannel(channelID) {
		return
	}

	msgs, err := p.dir.Messages(channelID, scanDepth)

	if err != nil {
		p.logger.Error("Error fetching moderator panel messages", zap.Error(err), zap.String("channelId", channelID))
		return
	}

	for _, m := range msgs {
		if m.Author != nil && m.Author.ID == botID && len(m.Embeds) > 0 && m.Embeds[0].Title == ModPanelTitle {
			return
		}
	}

	if _, err := p.dir.SendMessage(channelID, ModeratorPanel()); err != nil {
		p.logger.Error("Error sending moderator panel", zap.Error(err), zap.String("channelId", channelID))
		return
	}

	p.logger.Info("Moderator panel posted", zap.String("channelId", channelID))
}
