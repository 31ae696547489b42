// Package commands holds the administrator slash commands.
package commands

import (
	"panel-tickets/state"

	"github.com/bwmarrin/discordgo"
)

const (
	maxTimeoutMinutes = 10080
	maxPurge          = 100
	maxSlowmode       = 21600
)

var adminOnly int64 = discordgo.PermissionAdministrator

var dmPermission = false

func floatp(f float64) *float64 {
	return &f
}

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the audit log",
		MaxLength:   512,
	}
}

func command(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		Options:                  options,
		DefaultMemberPermissions: &adminOnly,
		DMPermission:             &dmPermission,
	}
}

var Commands = []*discordgo.ApplicationCommand{
	command("kick", "Kick a member", userOption("Member to kick"), reasonOption()),
	command("ban", "Ban a user", userOption("User to ban"), reasonOption()),
	command("unban", "Lift a ban", userOption("User to unban"), reasonOption()),
	command("timeout", "Time out a member",
		userOption("Member to time out"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "minutes",
			Description: "Length of the timeout in minutes",
			Required:    true,
			MinValue:    floatp(1),
			MaxValue:    maxTimeoutMinutes,
		},
		reasonOption(),
	),
	command("untimeout", "Remove a member's timeout", userOption("Member to release"), reasonOption()),
	command("purge", "Delete recent messages in this channel",
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "amount",
			Description: "How many messages to delete",
			Required:    true,
			MinValue:    floatp(1),
			MaxValue:    maxPurge,
		},
	),
	command("warn", "Warn a member",
		userOption("Member to warn"),
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "What the warning is for",
			Required:    true,
			MaxLength:   512,
		},
	),
	command("warnings", "List a member's warnings", userOption("Member to look up")),
	command("lock", "Stop @everyone from sending messages here"),
	command("unlock", "Let @everyone send messages here again"),
	command("slowmode", "Set this channel's slowmode",
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "seconds",
			Description: "Seconds between messages, 0 turns slowmode off",
			Required:    true,
			MinValue:    floatp(0),
			MaxValue:    maxSlowmode,
		},
	),
}

var Handlers = map[string]func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error{}

func AddHandler(name string, handler func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, st *state.State) error) {
	Handlers[name] = handler
}

func init() {
	AddHandler("kick", kick)
	AddHandler("ban", ban)
	AddHandler("unban", unban)
	AddHandler("timeout", timeout)
	AddHandler("untimeout", untimeout)
	AddHandler("purge", purge)
	AddHandler("warn", warn)
	AddHandler("warnings", listWarnings)
	AddHandler("lock", lock)
	AddHandler("unlock", unlock)
	AddHandler("slowmode", slowmode)
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(data discordgo.ApplicationCommandInteractionData) options {
	opts := options{}
	for _, o := range data.Options {
		opts[o.Name] = o
	}
	return opts
}

func (o options) user(name string) string {
	if opt, ok := o[name]; ok {
		return opt.UserValue(nil).ID
	}
	return ""
}

func (o options) str(name, fallback string) string {
	if opt, ok := o[name]; ok && opt.StringValue() != "" {
		return opt.StringValue()
	}
	return fallback
}

func (o options) integer(name string) int64 {
	if opt, ok := o[name]; ok {
		return opt.IntValue()
	}
	return 0
}
