// Package warnings is the in-memory moderator warning log.
package warnings

import (
	"sync"
	"time"
)

type Entry struct {
	ModeratorID string
	Reason      string
	Timestamp   time.Time
}

type key struct {
	guildID string
	userID  string
}

// Log is append-only and lives as long as the process
type Log struct {
	mu      sync.Mutex
	entries map[key][]Entry
	now     func() time.Time
}

func New() *Log {
	return &Log{entries: map[key][]Entry{}, now: time.Now}
}

func (l *Log) Add(guildID, userID, moderatorID, reason string) Entry {
	e := Entry{
		ModeratorID: moderatorID,
		Reason:      reason,
		Timestamp:   l.now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := key{guildID, userID}
	l.entries[k] = append(l.entries[k], e)

	return e
}

// List returns a copy of the warnings for a user, oldest first
func (l *Log) List(guildID, userID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Entry(nil), l.entries[key{guildID, userID}]...)
}
