// Package state holds everything an interaction handler needs, built once at startup.
package state

import (
	"context"

	"panel-tickets/cooldown"
	"panel-tickets/directory"
	"panel-tickets/gate"
	"panel-tickets/tickets"
	"panel-tickets/types"
	"panel-tickets/warnings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type State struct {
	Context   context.Context
	Config    *types.Config
	Logger    *zap.Logger
	Directory directory.Directory
	Tickets   *tickets.Controller
	Gates     *gate.Discloser
	Cooldown  cooldown.Limiter
	Warnings  *warnings.Log
}

// ModLog posts an audit line into the moderation log channel, failures are only logged
func (st *State) ModLog(content string) {
	channelID := st.Config.ModLogChannelID()

	if channelID == "" {
		return
	}

	_, err := st.Directory.SendMessage(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	})

	if err != nil {
		st.Logger.Error("Error sending mod log", zap.Error(err), zap.String("channelId", channelID))
	}
}
