package types

import "time"

type TicketState int

const (
	TicketOpen TicketState = iota
	TicketClosing
	TicketClosed
)

func (s TicketState) String() string {
	switch s {
	case TicketOpen:
		return "open"
	case TicketClosing:
		return "closing"
	case TicketClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Ticket is one live support channel
type Ticket struct {
	ID          string      `json:"id"`
	GuildID     string      `json:"guild_id"`
	ChannelID   string      `json:"channel_id"`
	ChannelName string      `json:"channel_name"`
	UserID      string      `json:"user_id"`
	PanelID     string      `json:"panel_id"`
	CreatedAt   time.Time   `json:"created_at"`
	State       TicketState `json:"-"`
}

// ClosedTicket is what the ledger records when a ticket goes away
type ClosedTicket struct {
	TicketID     string    `json:"ticket_id"`
	ChannelID    string    `json:"channel_id"`
	CloseUserID  string    `json:"close_user_id"`
	ClosedAt     time.Time `json:"closed_at"`
	MessageCount int       `json:"message_count"`
}
