package transcript

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
)

func lineOfSize(n int) types.TranscriptLine {
	// Size() adds one separator byte
	return types.TranscriptLine(strings.Repeat("x", n-1))
}

func flatten(pages []types.TranscriptPage) []types.TranscriptLine {
	var out []types.TranscriptLine
	for _, p := range pages {
		out = append(out, p.Lines...)
	}
	return out
}

func TestFormatLine(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 7, 59, 0, time.UTC)

	tests := []struct {
		name  string
		entry Entry
		want  types.TranscriptLine
	}{
		{
			name:  "plain",
			entry: Entry{Timestamp: ts, Author: "alice", AuthorID: "1", Content: "  hello  "},
			want:  "- `14:07` **alice (1)**: hello",
		},
		{
			name:  "empty",
			entry: Entry{Timestamp: ts, Author: "bob", AuthorID: "2"},
			want:  "- `14:07` **bob (2)**: *no text*",
		},
		{
			name: "attachments only",
			entry: Entry{Timestamp: ts, Author: "bob", AuthorID: "2", Attachments: []types.Attachment{
				{URL: "https://cdn/a.png"},
				{URL: "https://cdn/b.png"},
			}},
			want: "- `14:07` **bob (2)**: [attachment](https://cdn/a.png) [attachment](https://cdn/b.png)",
		},
		{
			name:  "text and attachment",
			entry: Entry{Timestamp: ts, Author: "bob", AuthorID: "2", Content: "see", Attachments: []types.Attachment{{URL: "u"}}},
			want:  "- `14:07` **bob (2)**: see [attachment](u)",
		},
		{
			name:  "converted to utc",
			entry: Entry{Timestamp: ts.In(time.FixedZone("BRT", -3*3600)), Author: "c", AuthorID: "3", Content: "x"},
			want:  "- `14:07` **c (3)**: x",
		},
	}

	for _, tt := range tests {
		if got := FormatLine(tt.entry); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestFromMessage(t *testing.T) {
	msg := &discordgo.Message{
		ID:      "10",
		Content: "hi",
		Author:  &discordgo.User{ID: "5", Username: "user", GlobalName: "Global"},
		Member:  &discordgo.Member{Nick: "Nick"},
		Attachments: []*discordgo.MessageAttachment{
			{ID: "a1", URL: "https://cdn/file.txt", Filename: "file.txt"},
		},
	}

	e := FromMessage(msg)
	if e.Author != "Nick" || e.AuthorID != "5" {
		t.Fatalf("unexpected author %q (%q)", e.Author, e.AuthorID)
	}
	if len(e.Attachments) != 1 || e.Attachments[0].URL != "https://cdn/file.txt" {
		t.Fatalf("unexpected attachments %+v", e.Attachments)
	}

	msg.Member = nil
	if got := FromMessage(msg).Author; got != "Global" {
		t.Fatalf("expected global name, got %q", got)
	}

	msg.Author = nil
	if got := FromMessage(msg); got.Author != "unknown" || got.AuthorID != "0" {
		t.Fatalf("expected unknown author, got %q (%q)", got.Author, got.AuthorID)
	}
}

func TestChunkEmpty(t *testing.T) {
	if pages := Chunk(nil, DefaultBudget); len(pages) != 0 {
		t.Fatalf("expected no pages, got %d", len(pages))
	}
}

func TestChunkShortMessagesFitOnePage(t *testing.T) {
	ts := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Timestamp: ts, Author: "a", AuthorID: "1", Content: "one"},
		{Timestamp: ts, Author: "b", AuthorID: "2", Content: "two"},
		{Timestamp: ts, Author: "a", AuthorID: "1", Content: "three"},
	}

	pages := Build(entries, DefaultBudget)
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if len(pages[0].Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(pages[0].Lines))
	}
	if !strings.HasSuffix(string(pages[0].Lines[2]), ": three") {
		t.Fatalf("lines out of order: %v", pages[0].Lines)
	}
}

func TestChunkBoundaryBeforeOverflowingLine(t *testing.T) {
	budget := 100
	lines := []types.TranscriptLine{
		lineOfSize(20), lineOfSize(20), lineOfSize(20), lineOfSize(20), lineOfSize(21),
	}

	pages := Chunk(lines, budget)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0].Lines) != 4 || len(pages[1].Lines) != 1 {
		t.Fatalf("expected 4+1 lines, got %d+%d", len(pages[0].Lines), len(pages[1].Lines))
	}
	if pages[1].Lines[0] != lines[4] {
		t.Fatalf("second page must start with line 5")
	}
}

func TestChunkExactBudgetFits(t *testing.T) {
	lines := []types.TranscriptLine{lineOfSize(50), lineOfSize(50)}

	pages := Chunk(lines, 100)
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].Size() != 100 {
		t.Fatalf("expected size 100, got %d", pages[0].Size())
	}
}

func TestChunkOversizedLineAlone(t *testing.T) {
	lines := []types.TranscriptLine{lineOfSize(10), lineOfSize(500), lineOfSize(10)}

	pages := Chunk(lines, 100)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if len(pages[1].Lines) != 1 || pages[1].Size() != 500 {
		t.Fatalf("oversized line must be alone and unsplit")
	}
}

func TestChunkProperties(t *testing.T) {
	var lines []types.TranscriptLine
	for i := 0; i < 400; i++ {
		lines = append(lines, lineOfSize(1+(i*37)%260))
	}

	for _, budget := range []int{1, 64, 255, 1000, DefaultBudget} {
		pages := Chunk(lines, budget)

		if got := flatten(pages); !reflect.DeepEqual(got, lines) {
			t.Fatalf("budget %d: concatenated pages differ from input", budget)
		}

		for i, p := range pages {
			if len(p.Lines) == 0 {
				t.Fatalf("budget %d: page %d is empty", budget, i)
			}
			if p.Size() > budget && len(p.Lines) != 1 {
				t.Fatalf("budget %d: page %d has size %d over budget", budget, i, p.Size())
			}
		}

		again := Chunk(flatten(pages), budget)
		if !reflect.DeepEqual(again, pages) {
			t.Fatalf("budget %d: re-chunking changed page boundaries", budget)
		}
	}
}

func TestPageText(t *testing.T) {
	p := types.TranscriptPage{Lines: []types.TranscriptLine{"a", "b", "c"}}
	if p.Text() != "a\nb\nc" {
		t.Fatalf("unexpected text %q", p.Text())
	}
}
