package types

import (
	"strings"
	"time"
)

// TranscriptLine is one rendered message of a ticket transcript
type TranscriptLine string

// Size is the serialized size of the line including its separator
func (l TranscriptLine) Size() int {
	return len(l) + 1
}

// TranscriptPage is a contiguous run of lines that fits in one embed
type TranscriptPage struct {
	Lines []TranscriptLine `json:"lines"`
}

func (p TranscriptPage) Size() int {
	var size int
	for _, line := range p.Lines {
		size += line.Size()
	}
	return size
}

func (p TranscriptPage) Text() string {
	var sb strings.Builder
	for i, line := range p.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

type Attachment struct {
	ID   string `json:"id"`   // ID of the attachment
	URL  string `json:"url"`  // URL of the attachment
	Name string `json:"name"` // Name of the attachment
}

type Message struct {
	ID          string       `json:"id"`
	Content     string       `json:"content"`
	AuthorID    string       `json:"author_id"`
	Author      string       `json:"author"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments"`
}

// FileTranscriptData is the JSON transcript attached to the archive post
type FileTranscriptData struct {
	TicketID    string           `json:"ticket_id"`
	UserID      string           `json:"user_id"`
	CloseUserID string           `json:"close_user_id"`
	ChannelID   string           `json:"channel_id"`
	ChannelName string           `json:"channel_name"`
	OpenedAt    time.Time        `json:"opened_at"`
	ClosedAt    time.Time        `json:"closed_at"`
	Messages    []Message        `json:"messages"`
	Pages       []TranscriptPage `json:"pages"`
}
