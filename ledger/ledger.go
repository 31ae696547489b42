// Package ledger keeps a history of opened and closed tickets in Postgres.
package ledger

import (
	"context"
	"fmt"

	"panel-tickets/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Ledger interface {
	Opened(ctx context.Context, t *types.Ticket) error
	Closed(ctx context.Context, c types.ClosedTicket) error
}

// Nop is used when no database is configured
type Nop struct{}

func (Nop) Opened(ctx context.Context, t *types.Ticket) error { return nil }

func (Nop) Closed(ctx context.Context, c types.ClosedTicket) error { return nil }

const schema = `CREATE TABLE IF NOT EXISTS tickets (
	id TEXT PRIMARY KEY,
	guild_id TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	panel_id TEXT NOT NULL,
	opened_at TIMESTAMPTZ NOT NULL,
	closed_at TIMESTAMPTZ,
	close_user_id TEXT,
	message_count INTEGER
);
CREATE INDEX IF NOT EXISTS tickets_channel_id_idx ON tickets (channel_id);`

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	if err != nil {
		return fmt.Errorf("error creating tickets table: %w", err)
	}

	return nil
}

func (p *Postgres) Opened(ctx context.Context, t *types.Ticket) error {
	_, err := p.pool.Exec(ctx, "INSERT INTO tickets (id, guild_id, channel_id, user_id, panel_id, opened_at) VALUES ($1, $2, $3, $4, $5, $6)", t.ID, t.GuildID, t.ChannelID, t.UserID, t.PanelID, t.CreatedAt)

	if err != nil {
		return fmt.Errorf("error inserting ticket into database: %w", err)
	}

	return nil
}

func (p *Postgres) Closed(ctx context.Context, c types.ClosedTicket) error {
	sql := "UPDATE tickets SET closed_at = $2, close_user_id = $3, message_count = $4 WHERE closed_at IS NULL AND "
	arg := c.TicketID

	// Tickets recovered from a channel topic after a restart only know their channel
	if c.TicketID != "" {
		sql += "id = $1"
	} else {
		sql += "channel_id = $1"
		arg = c.ChannelID
	}

	_, err := p.pool.Exec(ctx, sql, arg, c.ClosedAt, c.CloseUserID, c.MessageCount)

	if err != nil {
		return fmt.Errorf("error closing ticket in database: %w", err)
	}

	return nil
}
