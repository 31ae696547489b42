package msgcomponent

import (
	"panel-tickets/state"

	"github.com/bwmarrin/discordgo"
)

var Handlers = map[string]func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error{}

func AddHandler(name string, handler func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error) {
	Handlers[name] = handler
}

func init() {
	AddHandler("ticket_open", ticketOpen)
	AddHandler("ticket_close", ticketClose)
	AddHandler("transcript_open", transcriptOpen)
	AddHandler("panel_config", panelConfig)
	AddHandler("panel_commands", panelCommands)
	AddHandler("panel_quick_actions", panelQuickActions)
}
