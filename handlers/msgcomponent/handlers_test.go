package msgcomponent

import (
	"context"
	"strings"
	"testing"
	"time"

	"panel-tickets/cooldown"
	"panel-tickets/directory/directorytest"
	"panel-tickets/gate"
	"panel-tickets/state"
	"panel-tickets/tickets"
	"panel-tickets/types"
	"panel-tickets/warnings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	testGuild   = "g1"
	testPanel   = "p1"
	testChannel = "c1"
	testUser    = "u1"
)

type harness struct {
	s     *discordgo.Session
	rest  *directorytest.Transport
	dir   *directorytest.Fake
	limit *cooldown.Memory
	st    *state.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := types.DefaultConfig()
	cfg.Panels.ChannelIDs = []string{testPanel}
	cfg.Channels.TranscriptChannel = "archive"

	dir := directorytest.New()
	dir.AddChannel(&discordgo.Channel{ID: testPanel, GuildID: testGuild, Type: discordgo.ChannelTypeGuildText})
	dir.AddChannel(&discordgo.Channel{ID: testChannel, GuildID: testGuild, Type: discordgo.ChannelTypeGuildText})
	dir.AddChannel(&discordgo.Channel{ID: "archive", GuildID: testGuild, Type: discordgo.ChannelTypeGuildText})

	gates := gate.NewMemoryStore()
	limit := cooldown.NewMemory(time.Minute)
	rest := &directorytest.Transport{}

	return &harness{
		s:     directorytest.NewSession(rest),
		rest:  rest,
		dir:   dir,
		limit: limit,
		st: &state.State{
			Context:   context.Background(),
			Config:    &cfg,
			Logger:    zap.NewNop(),
			Directory: dir,
			Tickets:   tickets.NewController(dir, gates, nil, &cfg, zap.NewNop()),
			Gates:     gate.NewDiscloser(dir, gates, zap.NewNop()),
			Cooldown:  limit,
			Warnings:  warnings.New(),
		},
	}
}

func interaction(channelID string, perms int64) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "i1",
		AppID:     "a1",
		Token:     "tok",
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuild,
		ChannelID: channelID,
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: testUser, Username: "alice"},
			Permissions: perms,
		},
	}
}

// reply is the content of the last edit of the deferred response, or of the immediate response
func (h *harness) reply(t *testing.T) string {
	t.Helper()

	reqs := h.rest.Recorded()
	for n := len(reqs) - 1; n >= 0; n-- {
		r := reqs[n]
		if (r.Method == "PATCH" && strings.HasSuffix(r.Path, "/messages/@original")) || strings.HasSuffix(r.Path, "/callback") {
			return r.Body
		}
	}

	t.Fatalf("no interaction reply in %+v", reqs)
	return ""
}

func TestQuickActionLockReplies(t *testing.T) {
	h := newHarness(t)

	err := panelQuickActions(h.s, interaction(testChannel, discordgo.PermissionAdministrator), discordgo.MessageComponentInteractionData{
		CustomID: "panel_quick_actions",
		Values:   []string{"lock"},
	}, h.st)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	var locked bool
	for _, r := range h.rest.Recorded() {
		if r.Method == "PUT" && r.Path == "/channels/"+testChannel+"/permissions/"+testGuild {
			locked = strings.Contains(r.Body, `"deny":"2048"`)
		}
	}
	if !locked {
		t.Fatalf("expected the @everyone overwrite to deny send messages, got %+v", h.rest.Recorded())
	}

	if body := h.reply(t); !strings.Contains(body, `"content":"Channel locked."`) {
		t.Fatalf("unexpected reply %s", body)
	}

	sent := h.dir.SentTo("archive")
	if len(sent) != 1 || !strings.HasPrefix(sent[0].Data.Content, "**Lock** <#"+testChannel+">") {
		t.Fatalf("expected a lock mod log line, got %+v", sent)
	}
}

func TestQuickActionUnlockReplies(t *testing.T) {
	h := newHarness(t)

	err := panelQuickActions(h.s, interaction(testChannel, discordgo.PermissionAdministrator), discordgo.MessageComponentInteractionData{
		Values: []string{"unlock"},
	}, h.st)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}

	if body := h.reply(t); !strings.Contains(body, `"content":"Channel unlocked."`) {
		t.Fatalf("unexpected reply %s", body)
	}
}

func TestQuickActionNeedsAdministrator(t *testing.T) {
	h := newHarness(t)

	err := panelQuickActions(h.s, interaction(testChannel, discordgo.PermissionSendMessages), discordgo.MessageComponentInteractionData{
		Values: []string{"lock"},
	}, h.st)
	if err != nil {
		t.Fatalf("quick action: %v", err)
	}

	for _, r := range h.rest.Recorded() {
		if r.Method == "PUT" {
			t.Fatalf("non administrators must not change permissions")
		}
	}
	if body := h.reply(t); !strings.Contains(body, "Administrator") {
		t.Fatalf("unexpected reply %s", body)
	}
}

func TestTicketOpenFromOtherChannelKeepsCooldown(t *testing.T) {
	h := newHarness(t)

	err := ticketOpen(h.s, interaction(testChannel, 0), discordgo.MessageComponentInteractionData{CustomID: "ticket_open"}, h.st)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if body := h.reply(t); !strings.Contains(body, unauthorizedPanel) {
		t.Fatalf("unexpected reply %s", body)
	}
	if len(h.dir.Created) != 0 {
		t.Fatalf("no channel may be created")
	}
	if ok, _, _ := h.limit.Acquire(context.Background(), testUser); !ok {
		t.Fatalf("a rejected click must not start a cooldown")
	}
}

func TestTicketOpenFailureReleasesCooldown(t *testing.T) {
	h := newHarness(t)
	h.dir.FailCreate = true

	err := ticketOpen(h.s, interaction(testPanel, 0), discordgo.MessageComponentInteractionData{CustomID: "ticket_open"}, h.st)
	if err == nil {
		t.Fatalf("expected the create failure to surface")
	}

	if ok, _, _ := h.limit.Acquire(context.Background(), testUser); !ok {
		t.Fatalf("a failed open must not leave the user on cooldown")
	}
}

func TestTicketOpenStartsCooldown(t *testing.T) {
	h := newHarness(t)

	err := ticketOpen(h.s, interaction(testPanel, 0), discordgo.MessageComponentInteractionData{CustomID: "ticket_open"}, h.st)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if len(h.dir.Created) != 1 {
		t.Fatalf("expected one ticket channel, got %d", len(h.dir.Created))
	}
	// encoding/json escapes < and > in request bodies
	if body := h.reply(t); !strings.Contains(body, `"content":"Ticket created: \u003c#1001\u003e"`) {
		t.Fatalf("unexpected reply %s", body)
	}

	err = ticketOpen(h.s, interaction(testPanel, 0), discordgo.MessageComponentInteractionData{CustomID: "ticket_open"}, h.st)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if len(h.dir.Created) != 1 {
		t.Fatalf("second click inside the cooldown must not open another ticket")
	}
	if body := h.reply(t); !strings.Contains(body, "cooldown") {
		t.Fatalf("unexpected reply %s", body)
	}
}
