// Package transcript renders ticket message history into size-bounded pages.
package transcript

import (
	"strings"
	"time"

	"panel-tickets/types"

	"github.com/bwmarrin/discordgo"
)

// DefaultBudget keeps a page under the 4096 character embed description limit
const DefaultBudget = 3900

const NoTextPlaceholder = "*no text*"

// Entry is a message normalized at the platform boundary
type Entry struct {
	ID          string
	Timestamp   time.Time
	Author      string
	AuthorID    string
	Content     string
	Attachments []types.Attachment
}

// DisplayName prefers the guild nickname, then the global name, then the username
func DisplayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}

	if user == nil {
		return "unknown"
	}

	if user.GlobalName != "" {
		return user.GlobalName
	}

	return user.Username
}

func FromMessage(msg *discordgo.Message) Entry {
	e := Entry{
		ID:        msg.ID,
		Timestamp: msg.Timestamp,
		Author:    DisplayName(msg.Author, msg.Member),
		Content:   msg.Content,
	}

	if msg.Author != nil {
		e.AuthorID = msg.Author.ID
	} else {
		e.AuthorID = "0"
	}

	for _, a := range msg.Attachments {
		e.Attachments = append(e.Attachments, types.Attachment{
			ID:   a.ID,
			URL:  a.URL,
			Name: a.Filename,
		})
	}

	return e
}

func (e Entry) Message() types.Message {
	return types.Message{
		ID:          e.ID,
		Content:     e.Content,
		AuthorID:    e.AuthorID,
		Author:      e.Author,
		Timestamp:   e.Timestamp,
		Attachments: e.Attachments,
	}
}

// FormatLine renders "- `HH:MM` **author (id)**: body [attachment](url)"
func FormatLine(e Entry) types.TranscriptLine {
	body := strings.TrimSpace(e.Content)

	if len(e.Attachments) > 0 {
		links := make([]string, 0, len(e.Attachments))
		for _, a := range e.Attachments {
			links = append(links, "[attachment]("+a.URL+")")
		}
		body = strings.TrimSpace(body + " " + strings.Join(links, " "))
	}

	if body == "" {
		body = NoTextPlaceholder
	}

	return types.TranscriptLine("- `" + e.Timestamp.UTC().Format("15:04") + "` **" + e.Author + " (" + e.AuthorID + ")**: " + body)
}

func FormatLines(entries []Entry) []types.TranscriptLine {
	lines := make([]types.TranscriptLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatLine(e))
	}
	return lines
}

// Chunk packs lines greedily into pages of at most budget bytes. A line larger
// than the budget gets a page of its own and is never split.
func Chunk(lines []types.TranscriptLine, budget int) []types.TranscriptPage {
	if budget <= 0 {
		budget = DefaultBudget
	}

	var pages []types.TranscriptPage
	var current []types.TranscriptLine
	var size int

	for _, line := range lines {
		if len(current) > 0 && size+line.Size() > budget {
			pages = append(pages, types.TranscriptPage{Lines: current})
			current = nil
			size = 0
		}

		current = append(current, line)
		size += line.Size()
	}

	if len(current) > 0 {
		pages = append(pages, types.TranscriptPage{Lines: current})
	}

	return pages
}

// Build formats and chunks a whole history
func Build(entries []Entry, budget int) []types.TranscriptPage {
	return Chunk(FormatLines(entries), budget)
}
