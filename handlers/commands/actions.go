package commands

import (
	"fmt"
	"strings"
	"time"

	"panel-tickets/moderation"
	"panel-tickets/state"
	"panel-tickets/utils"
	"panel-tickets/warnings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const noReason = "No reason provided"

// maxListedWarnings keeps the warnings embed under the description limit
const maxListedWarnings = 15

func modLine(action, targetID, moderatorID, reason string) string {
	return "**" + action + "** <@" + targetID + "> by <@" + moderatorID + ">: " + reason
}

func kick(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	opts := optionMap(data)
	target, reason := opts.user("user"), opts.str("reason", noReason)

	err := s.GuildMemberDeleteWithReason(i.GuildID, target, reason)

	if err != nil {
		st.Logger.Error("Error kicking member", zap.Error(err), zap.String("userId", target))
		return utils.Ephemeral(s, i, "Couldn't kick <@"+target+">: "+err.Error())
	}

	st.ModLog(modLine("Kick", target, utils.UserID(i), reason))

	return utils.Ephemeral(s, i, "Kicked <@"+target+">.")
}

func ban(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	opts := optionMap(data)
	target, reason := opts.user("user"), opts.str("reason", noReason)

	err := s.GuildBanCreateWithReason(i.GuildID, target, reason, 0)

	if err != nil {
		st.Logger.Error("Error banning user", zap.Error(err), zap.String("userId", target))
		return utils.Ephemeral(s, i, "Couldn't ban <@"+target+">: "+err.Error())
	}

	st.ModLog(modLine("Ban", target, utils.UserID(i), reason))

	return utils.Ephemeral(s, i, "Banned <@"+target+">.")
}

func unban(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	opts := optionMap(data)
	target, reason := opts.user("user"), opts.str("reason", noReason)

	err := s.GuildBanDelete(i.GuildID, target, discordgo.WithAuditLogReason(reason))

	if err != nil {
		st.Logger.Error("Error unbanning user", zap.Error(err), zap.String("userId", target))
		return utils.Ephemeral(s, i, "Couldn't unban <@"+target+">: "+err.Error())
	}

	st.ModLog(modLine("Unban", target, utils.UserID(i), reason))

	return utils.Ephemeral(s, i, "Unbanned <@"+target+">.")
}

func timeout(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	opts := optionMap(data)
	target, reason := opts.user("user"), opts.str("reason", noReason)
	minutes := opts.integer("minutes")

	if minutes < 1 || minutes > maxTimeoutMinutes {
		return utils.Ephemeral(s, i, fmt.Sprintf("Timeouts must be between 1 and %d minutes.", maxTimeoutMinutes))
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)

	err := s.GuildMemberTimeout(i.GuildID, target, &until, discordgo.WithAuditLogReason(reason))

	if err != nil {
		st.Logger.Error("Error timing out member", zap.Error(err), zap.String("userId", target))
		return utils.Ephemeral(s, i, "Couldn't time out <@"+target+">: "+err.Error())
	}

	st.ModLog(modLine(fmt.Sprintf("Timeout (%dm)", minutes), target, utils.UserID(i), reason))

	return utils.Ephemeral(s, i, fmt.Sprintf("Timed out <@%s> for %d minutes.", target, minutes))
}

func untimeout(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	opts := optionMap(data)
	target, reason := opts.user("user"), opts.str("reason", noReason)

	err := s.GuildMemberTimeout(i.GuildID, target, nil, discordgo.WithAuditLogReason(reason))

	if err != nil {
		st.Logger.Error("Error removing timeout", zap.Error(err), zap.String("userId", target))
		return utils.Ephemeral(s, i, "Couldn't remove the timeout of <@"+target+">: "+err.Error())
	}

	st.ModLog(modLine("Untimeout", target, utils.UserID(i), reason))

	return utils.Ephemeral(s, i, "Removed the timeout of <@"+target+">.")
}

func purge(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	amount := optionMap(data).integer("amount")

	if amount < 1 || amount > maxPurge {
		return utils.Ephemeral(s, i, fmt.Sprintf("You can purge between 1 and %d messages.", maxPurge))
	}

	// Deleting can take longer than the interaction deadline
	err := utils.Defer(s, i)

	if err != nil {
		return err
	}

	n, err := moderation.Purge(s, st.Directory, i.ChannelID, int(amount))

	if err != nil {
		st.Logger.Error("Error purging messages", zap.Error(err), zap.String("channelId", i.ChannelID), zap.Int("deleted", n))
		return utils.Edit(s, i, fmt.Sprintf("Deleted %d messages before an error occurred: %s", n, err.Error()))
	}

	st.ModLog(fmt.Sprintf("**Purge** %d messages in <#%s> by <@%s>", n, i.ChannelID, utils.UserID(i)))

	return utils.Edit(s, i, fmt.Sprintf("Deleted %d messages.", n))
}

func warn(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	opts := optionMap(data)
	target, reason := opts.user("user"), opts.str("reason", noReason)

	st.Warnings.Add(i.GuildID, target, utils.UserID(i), reason)
	count := len(st.Warnings.List(i.GuildID, target))

	st.ModLog(modLine("Warn", target, utils.UserID(i), reason))

	return utils.Ephemeral(s, i, fmt.Sprintf("Warned <@%s>. They now have %d warning(s).", target, count))
}

// WarningsEmbed lists the newest warnings last, capped at maxListedWarnings
func WarningsEmbed(userID string, entries []warnings.Entry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Warnings (%d)", len(entries)),
	}

	if len(entries) == 0 {
		embed.Description = "<@" + userID + "> has no warnings."
		return embed
	}

	shown := entries
	if len(shown) > maxListedWarnings {
		shown = shown[len(shown)-maxListedWarnings:]
	}

	lines := make([]string, 0, len(shown)+1)
	lines = append(lines, "Warnings for <@"+userID+">:")
	for n, e := range shown {
		lines = append(lines, fmt.Sprintf("%d. <t:%d:f> by <@%s>: %s", len(entries)-len(shown)+n+1, e.Timestamp.Unix(), e.ModeratorID, e.Reason))
	}

	embed.Description = strings.Join(lines, "\n")
	return embed
}

func listWarnings(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	target := optionMap(data).user("user")

	return utils.EphemeralEmbed(s, i, WarningsEmbed(target, st.Warnings.List(i.GuildID, target)))
}

func setLocked(s *discordgo.Session, i *discordgo.Interaction, st *state.State, locked bool) error {
	err := moderation.SetLocked(s, st.Directory, i.GuildID, i.ChannelID, locked)

	action, reply := "Lock", "Channel locked."
	if !locked {
		action, reply = "Unlock", "Channel unlocked."
	}

	if err != nil {
		st.Logger.Error("Error changing channel lock", zap.Error(err), zap.String("channelId", i.ChannelID), zap.Bool("locked", locked))
		return utils.Ephemeral(s, i, "Couldn't change the channel permissions: "+err.Error())
	}

	st.ModLog("**" + action + "** <#" + i.ChannelID + "> by <@" + utils.UserID(i) + ">")

	return utils.Ephemeral(s, i, reply)
}

func lock(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	return setLocked(s, i, st, true)
}

func unlock(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	return setLocked(s, i, st, false)
}

func slowmode(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error {
	seconds := optionMap(data).integer("seconds")

	if seconds < 0 || seconds > maxSlowmode {
		return utils.Ephemeral(s, i, fmt.Sprintf("Slowmode must be between 0 and %d seconds.", maxSlowmode))
	}

	err := moderation.SetSlowmode(s, i.ChannelID, int(seconds))

	if err != nil {
		st.Logger.Error("Error setting slowmode", zap.Error(err), zap.String("channelId", i.ChannelID))
		return utils.Ephemeral(s, i, "Couldn't set slowmode: "+err.Error())
	}

	st.ModLog(fmt.Sprintf("**Slowmode** %ds in <#%s> by <@%s>", seconds, i.ChannelID, utils.UserID(i)))

	if seconds == 0 {
		return utils.Ephemeral(s, i, "Slowmode disabled.")
	}

	return utils.Ephemeral(s, i, fmt.Sprintf("Slowmode set to %ds.", seconds))
}
