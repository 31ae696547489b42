package cooldown

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCooldown(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(10 * time.Second)
	m.now = func() time.Time { return now }

	ok, _, err := m.Acquire(context.Background(), "u1")
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got %v %v", ok, err)
	}

	now = now.Add(4 * time.Second)
	ok, left, _ := m.Acquire(context.Background(), "u1")
	if ok {
		t.Fatalf("expected cooldown")
	}
	if left != 6*time.Second {
		t.Fatalf("expected 6s left, got %s", left)
	}

	if ok, _, _ := m.Acquire(context.Background(), "u2"); !ok {
		t.Fatalf("other users are not affected")
	}

	now = now.Add(6 * time.Second)
	if ok, _, _ := m.Acquire(context.Background(), "u1"); !ok {
		t.Fatalf("expected cooldown to expire")
	}
}

func TestMemoryDisabled(t *testing.T) {
	m := NewMemory(0)
	for i := 0; i < 3; i++ {
		if ok, _, _ := m.Acquire(context.Background(), "u1"); !ok {
			t.Fatalf("zero window must never limit")
		}
	}
}

func TestMemoryRelease(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	if ok, _, _ := m.Acquire(ctx, "u1"); !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if err := m.Release(ctx, "u1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _, _ := m.Acquire(ctx, "u1"); !ok {
		t.Fatalf("released cooldown should allow a new acquire")
	}
	if err := m.Release(ctx, "unknown"); err != nil {
		t.Fatalf("releasing an unknown key: %v", err)
	}
}
