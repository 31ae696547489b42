package commands

import (
	"strings"
	"testing"
	"time"

	"panel-tickets/warnings"

	"github.com/bwmarrin/discordgo"
)

func TestEveryCommandHasHandler(t *testing.T) {
	if len(Commands) != len(Handlers) {
		t.Fatalf("%d commands but %d handlers", len(Commands), len(Handlers))
	}

	for _, c := range Commands {
		if _, ok := Handlers[c.Name]; !ok {
			t.Fatalf("no handler for /%s", c.Name)
		}
		if c.DefaultMemberPermissions == nil || *c.DefaultMemberPermissions != discordgo.PermissionAdministrator {
			t.Fatalf("/%s must be administrator only", c.Name)
		}
		if c.DMPermission == nil || *c.DMPermission {
			t.Fatalf("/%s must not be usable in DMs", c.Name)
		}
	}
}

func TestOptionMap(t *testing.T) {
	data := discordgo.ApplicationCommandInteractionData{
		Name: "timeout",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "42"},
			{Name: "minutes", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(30)},
		},
	}

	opts := optionMap(data)

	if opts.user("user") != "42" {
		t.Fatalf("unexpected user %q", opts.user("user"))
	}
	if opts.integer("minutes") != 30 {
		t.Fatalf("unexpected minutes %d", opts.integer("minutes"))
	}
	if opts.str("reason", noReason) != noReason {
		t.Fatalf("missing reason should fall back")
	}
	if opts.integer("amount") != 0 || opts.user("other") != "" {
		t.Fatalf("missing options should be zero")
	}
}

func TestWarningsEmbed(t *testing.T) {
	if !strings.Contains(WarningsEmbed("1", nil).Description, "no warnings") {
		t.Fatalf("empty list should say so")
	}

	var entries []warnings.Entry
	for n := 0; n < maxListedWarnings+5; n++ {
		entries = append(entries, warnings.Entry{ModeratorID: "9", Reason: "r", Timestamp: time.Unix(int64(n), 0)})
	}

	embed := WarningsEmbed("1", entries)
	lines := strings.Split(embed.Description, "\n")

	if len(lines) != maxListedWarnings+1 {
		t.Fatalf("expected %d lines, got %d", maxListedWarnings+1, len(lines))
	}
	if !strings.HasPrefix(lines[1], "6. ") || !strings.HasPrefix(lines[len(lines)-1], "20. ") {
		t.Fatalf("unexpected numbering %q ... %q", lines[1], lines[len(lines)-1])
	}
	if embed.Title != "Warnings (20)" {
		t.Fatalf("unexpected title %q", embed.Title)
	}
}

func TestModLine(t *testing.T) {
	if got := modLine("Kick", "1", "2", "spam"); got != "**Kick** <@1> by <@2>: spam" {
		t.Fatalf("unexpected mod line %q", got)
	}
}
