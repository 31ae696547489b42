package directory_test

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"panel-tickets/directory"
	"panel-tickets/directory/directorytest"
	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// page renders the ids from..to (inclusive) newest first, the order Discord returns them in
func page(from, to int) string {
	var msgs []string
	for id := to; id >= from; id-- {
		msgs = append(msgs, fmt.Sprintf(`{"id":"%d","channel_id":"c1","content":"m%d","timestamp":"2024-01-01T00:00:00Z"}`, id, id))
	}
	return "[" + strings.Join(msgs, ",") + "]"
}

func TestHistoryPagesOldestFirst(t *testing.T) {
	rest := &directorytest.Transport{
		Respond: func(r directorytest.Request) (int, string) {
			switch r.Query.Get("after") {
			case "0":
				return http.StatusOK, page(1000, 1099)
			case "1099":
				return http.StatusOK, page(1100, 1136)
			}
			return http.StatusOK, "[]"
		},
	}

	dir := directory.NewSession(directorytest.NewSession(rest), zap.NewNop())

	var ids []string
	err := dir.History("c1", func(m *discordgo.Message) error {
		ids = append(ids, m.ID)
		return nil
	})
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if len(ids) != 137 {
		t.Fatalf("expected 137 messages, got %d", len(ids))
	}
	for n, id := range ids {
		if id != strconv.Itoa(1000+n) {
			t.Fatalf("message %d out of order: %s", n, id)
		}
	}

	reqs := rest.Recorded()
	if len(reqs) != 2 {
		t.Fatalf("expected paging to stop after the short page, got %d requests", len(reqs))
	}
	for n, want := range []string{"0", "1099"} {
		r := reqs[n]
		if r.Method != "GET" || r.Path != "/channels/c1/messages" || r.Query.Get("after") != want || r.Query.Get("limit") != "100" {
			t.Fatalf("unexpected request %d: %+v", n, r)
		}
	}
}

func TestHistoryStopsOnCallbackError(t *testing.T) {
	rest := &directorytest.Transport{
		Respond: func(r directorytest.Request) (int, string) {
			return http.StatusOK, page(1000, 1099)
		},
	}

	dir := directory.NewSession(directorytest.NewSession(rest), zap.NewNop())
	stop := errors.New("stop")

	seen := 0
	err := dir.History("c1", func(m *discordgo.Message) error {
		seen++
		if seen == 3 {
			return stop
		}
		return nil
	})

	if !errors.Is(err, stop) || seen != 3 || len(rest.Recorded()) != 1 {
		t.Fatalf("expected history to stop at the callback error, got %v after %d", err, seen)
	}
}

func TestHistoryFailureIsPlatformError(t *testing.T) {
	rest := &directorytest.Transport{
		Respond: func(r directorytest.Request) (int, string) {
			return http.StatusForbidden, `{"code":50001,"message":"Missing Access"}`
		},
	}

	dir := directory.NewSession(directorytest.NewSession(rest), zap.NewNop())

	err := dir.History("c1", func(*discordgo.Message) error { return nil })

	var perr *types.PlatformError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a platform error, got %v", err)
	}
}

func TestDeleteChannelToleratesUnknownChannel(t *testing.T) {
	rest := &directorytest.Transport{
		Respond: func(r directorytest.Request) (int, string) {
			return http.StatusNotFound, `{"code":10003,"message":"Unknown Channel"}`
		},
	}

	dir := directory.NewSession(directorytest.NewSession(rest), zap.NewNop())

	if err := dir.DeleteChannel("c1", "ticket closed"); err != nil {
		t.Fatalf("deleting a gone channel should succeed, got %v", err)
	}

	reqs := rest.Recorded()
	if len(reqs) != 1 || reqs[0].Method != "DELETE" || reqs[0].Path != "/channels/c1" {
		t.Fatalf("unexpected requests %+v", reqs)
	}
}
