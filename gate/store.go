package gate

import (
	"context"
	"sync"
	"time"

	"panel-tickets/types"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigFastest

// Gate is the stored transcript behind one archive post
type Gate struct {
	MessageID   string                 `json:"message_id"`
	ChannelName string                 `json:"channel_name"`
	Pages       []types.TranscriptPage `json:"pages"`
}

type Store interface {
	Put(ctx context.Context, g *Gate) error
	// Get returns types.ErrUnknownTranscript when nothing is stored for messageID
	Get(ctx context.Context, messageID string) (*Gate, error)
	// Claim atomically moves the gate from hidden to revealed, reporting whether this caller won
	Claim(ctx context.Context, messageID string) (bool, error)
	// Release undoes a claim whose disclosure never started
	Release(ctx context.Context, messageID string) error
}

type memoryEntry struct {
	gate     *Gate
	revealed bool
}

// MemoryStore keeps gates for the lifetime of the process
type MemoryStore struct {
	mu    sync.Mutex
	gates map[string]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{gates: map[string]*memoryEntry{}}
}

func (m *MemoryStore) Put(ctx context.Context, g *Gate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[g.MessageID] = &memoryEntry{gate: g}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, messageID string) (*Gate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.gates[messageID]
	if !ok {
		return nil, types.ErrUnknownTranscript
	}
	return e.gate, nil
}

func (m *MemoryStore) Claim(ctx context.Context, messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.gates[messageID]
	if !ok {
		return false, types.ErrUnknownTranscript
	}

	if e.revealed {
		return false, nil
	}

	e.revealed = true
	return true, nil
}

func (m *MemoryStore) Release(ctx context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.gates[messageID]; ok {
		e.revealed = false
	}
	return nil
}

// RedisStore lets gates survive restarts so the fixed transcript_open button keeps working
type RedisStore struct {
	rediscli *redis.Client
	ttl      time.Duration
}

// NewRedisStore keeps gates for ttl, zero keeps them forever
func NewRedisStore(rediscli *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rediscli: rediscli, ttl: ttl}
}

func gateKey(messageID string) string {
	return "transcript_gate:" + messageID
}

func revealedKey(messageID string) string {
	return "transcript_revealed:" + messageID
}

func (r *RedisStore) Put(ctx context.Context, g *Gate) error {
	bytes, err := json.Marshal(g)

	if err != nil {
		return err
	}

	return r.rediscli.Set(ctx, gateKey(g.MessageID), bytes, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, messageID string) (*Gate, error) {
	bytes, err := r.rediscli.Get(ctx, gateKey(messageID)).Bytes()

	if err == redis.Nil {
		return nil, types.ErrUnknownTranscript
	}

	if err != nil {
		return nil, err
	}

	var g Gate

	err = json.Unmarshal(bytes, &g)

	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *RedisStore) Claim(ctx context.Context, messageID string) (bool, error) {
	return r.rediscli.SetNX(ctx, revealedKey(messageID), "1", r.ttl).Result()
}

func (r *RedisStore) Release(ctx context.Context, messageID string) error {
	return r.rediscli.Del(ctx, revealedKey(messageID)).Err()
}
