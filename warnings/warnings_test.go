package warnings

import (
	"testing"
	"time"
)

func TestLogIsKeyedByGuildAndUser(t *testing.T) {
	l := New()
	now := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Add("g1", "u1", "m1", "spam")
	now = now.Add(time.Minute)
	l.Add("g1", "u1", "m2", "links")
	l.Add("g2", "u1", "m1", "other guild")

	got := l.List("g1", "u1")
	if len(got) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(got))
	}
	if got[0].Reason != "spam" || got[1].ModeratorID != "m2" || !got[1].Timestamp.After(got[0].Timestamp) {
		t.Fatalf("unexpected warnings %+v", got)
	}

	if len(l.List("g2", "u1")) != 1 || len(l.List("g1", "u2")) != 0 {
		t.Fatalf("warnings leaked across keys")
	}

	got[0].Reason = "changed"
	if l.List("g1", "u1")[0].Reason != "spam" {
		t.Fatalf("List must return a copy")
	}
}
