package requests

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded marks a result that arrived after a newer request for the same key started.
var ErrSuperseded = errors.New("request superseded by a newer one")

// Ticket identifies one outbound request.
type Ticket struct {
	ID  string
	Key string
	Seq int64
}

// Tracker hands out increasing sequence numbers per key and answers whether a
// ticket is still the newest. Keys are "<kind>:<user>" so a user's dub
// requests and library refreshes do not supersede each other.
type Tracker interface {
	Begin(ctx context.Context, key string) (Ticket, error)
	Latest(ctx context.Context, t Ticket) (bool, error)
}

// Key builds a tracker key.
func Key(kind, userID string) string {
	return kind + ":" + userID
}

// Memory is a process-local Tracker.
type Memory struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func NewMemory() *Memory {
	return &Memory{seqs: make(map[string]int64)}
}

func (m *Memory) Begin(_ context.Context, key string) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[key]++
	return Ticket{ID: uuid.NewString(), Key: key, Seq: m.seqs[key]}, nil
}

func (m *Memory) Latest(_ context.Context, t Ticket) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seqs[t.Key] == t.Seq, nil
}
