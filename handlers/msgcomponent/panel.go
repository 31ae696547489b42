package msgcomponent

import (
	"fmt"
	"strconv"
	"strings"

	"panel-tickets/handlers/commands"
	"panel-tickets/moderation"
	"panel-tickets/panels"
	"panel-tickets/state"
	"panel-tickets/types"
	"panel-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func channelList(ids []string) string {
	if len(ids) == 0 {
		return "Not set"
	}

	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = "<#" + id + ">"
	}
	return strings.Join(mentions, ", ")
}

// ConfigEmbed summarizes the running configuration for moderators
func ConfigEmbed(cfg *types.Config) *discordgo.MessageEmbed {
	roles := "None"
	if len(cfg.SupportRoles.Roles) > 0 {
		roles = strings.Join(cfg.SupportRoles.Roles, ", ")
	}

	transcriptChannel := "Not set"
	if cfg.Channels.TranscriptChannel != "" {
		transcriptChannel = "<#" + cfg.Channels.TranscriptChannel + ">"
	}

	modLog := "Not set"
	if id := cfg.ModLogChannelID(); id != "" {
		modLog = "<#" + id + ">"
	}

	return &discordgo.MessageEmbed{
		Title: "Bot settings",
		Color: panels.ModColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticket panels", Value: channelList(cfg.Panels.ChannelIDs)},
			{Name: "Transcript channel", Value: transcriptChannel, Inline: true},
			{Name: "Mod log", Value: modLog, Inline: true},
			{Name: "Support roles", Value: roles},
			{Name: "Open cooldown", Value: strconv.Itoa(cfg.Tickets.CooldownSeconds) + "s", Inline: true},
		},
	}
}

func CommandsEmbed(cmds []*discordgo.ApplicationCommand) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, c := range cmds {
		b.WriteString("`/" + c.Name + "` " + c.Description + "\n")
	}

	return &discordgo.MessageEmbed{
		Title:       "Moderation commands",
		Color:       panels.ModColor,
		Description: strings.TrimSuffix(b.String(), "\n"),
	}
}

func panelConfig(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error {
	return utils.EphemeralEmbed(s, i, ConfigEmbed(st.Config))
}

func panelCommands(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error {
	return utils.EphemeralEmbed(s, i, CommandsEmbed(commands.Commands))
}

type quickAction struct {
	name  string
	count int
}

// parseQuickAction reads select values such as purge_10, lock or slowmode_0
func parseQuickAction(value string) (quickAction, error) {
	name, arg, hasArg := strings.Cut(value, "_")

	switch name {
	case "lock", "unlock":
		if hasArg {
			return quickAction{}, fmt.Errorf("unexpected argument for %s", name)
		}
		return quickAction{name: name}, nil
	case "purge", "slowmode":
		n, err := strconv.Atoi(arg)

		if err != nil || n < 0 || (name == "purge" && n == 0) {
			return quickAction{}, fmt.Errorf("invalid %s amount: %q", name, arg)
		}

		return quickAction{name: name, count: n}, nil
	}

	return quickAction{}, fmt.Errorf("unknown quick action: %q", value)
}

func panelQuickActions(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, st *state.State) error {
	if !utils.IsAdmin(i) {
		return utils.Ephemeral(s, i, "You need the Administrator permission to use quick actions.")
	}

	if len(data.Values) == 0 {
		return utils.Ephemeral(s, i, "Please select an action.")
	}

	action, err := parseQuickAction(data.Values[0])

	if err != nil {
		st.Logger.Error("Invalid quick action", zap.Error(err), zap.String("userId", utils.UserID(i)))
		return utils.Ephemeral(s, i, "Unknown action.")
	}

	err = utils.Defer(s, i)

	if err != nil {
		return err
	}

	// Edit existing message to reset the select menu
	if i.Message != nil {
		_, err = st.Directory.EditMessage(&discordgo.MessageEdit{
			Embeds:     &i.Message.Embeds,
			Components: &i.Message.Components,
			ID:         i.Message.ID,
			Channel:    i.Message.ChannelID,
		})

		if err != nil {
			st.Logger.Error("Error resetting select menu", zap.Error(err), zap.String("channelId", i.ChannelID))
		}
	}

	mod := "<@" + utils.UserID(i) + ">"
	var reply, label string

	switch action.name {
	case "purge":
		n, err := moderation.Purge(s, st.Directory, i.ChannelID, action.count)

		if err != nil {
			return err
		}

		reply = fmt.Sprintf("Deleted %d messages.", n)
		st.ModLog(fmt.Sprintf("**Purge** %d messages in <#%s> by %s", n, i.ChannelID, mod))
	case "lock", "unlock":
		locked := action.name == "lock"

		if err := moderation.SetLocked(s, st.Directory, i.GuildID, i.ChannelID, locked); err != nil {
			return err
		}

		reply, label = "Channel locked.", "Lock"
		if !locked {
			reply, label = "Channel unlocked.", "Unlock"
		}
		st.ModLog("**" + label + "** <#" + i.ChannelID + "> by " + mod)
	case "slowmode":
		if err := moderation.SetSlowmode(s, i.ChannelID, action.count); err != nil {
			return err
		}

		if action.count == 0 {
			reply = "Slowmode disabled."
		} else {
			reply = fmt.Sprintf("Slowmode set to %ds.", action.count)
		}
		st.ModLog(fmt.Sprintf("**Slowmode** %ds in <#%s> by %s", action.count, i.ChannelID, mod))
	}

	return utils.Edit(s, i, reply)
}
