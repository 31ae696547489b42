package setup

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"panel-tickets/types"
)

func TestWizardRetriesThenSucceeds(t *testing.T) {
	in := strings.NewReader("abc\n1459635692576444511, 1460763952504901915\n\n1460769731031077059\n\nSupport, Mod\n")
	var out bytes.Buffer

	cfg, err := New(in, &out).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(cfg.Panels.ChannelIDs) != 2 || cfg.Panels.ChannelIDs[1] != "1460763952504901915" {
		t.Fatalf("unexpected panels %v", cfg.Panels.ChannelIDs)
	}
	if cfg.Channels.TranscriptChannel != "1460769731031077059" || cfg.Channels.ModLogChannel != "" {
		t.Fatalf("unexpected channels %+v", cfg.Channels)
	}
	if len(cfg.SupportRoles.Roles) != 2 || cfg.SupportRoles.Roles[1] != "Mod" {
		t.Fatalf("unexpected roles %v", cfg.SupportRoles.Roles)
	}
	if strings.Count(out.String(), "Invalid answer") != 2 {
		t.Fatalf("expected two rejected answers, output:\n%s", out.String())
	}
}

func TestWizardGivesUp(t *testing.T) {
	in := strings.NewReader("x\ny\nz\n1\n")

	_, err := New(in, &bytes.Buffer{}).Run()
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestWizardEOF(t *testing.T) {
	if _, err := New(strings.NewReader(""), &bytes.Buffer{}).Run(); err == nil {
		t.Fatalf("expected error on empty input")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := types.DefaultConfig()
	cfg.Panels.ChannelIDs = []string{"1"}
	cfg.Channels.TranscriptChannel = "2"

	if err := Write(path, &cfg); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := types.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Channels.TranscriptChannel != "2" || got.Transcripts.PageBudget != 3900 {
		t.Fatalf("unexpected config %+v", got)
	}
}
