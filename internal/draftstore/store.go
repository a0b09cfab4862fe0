package draftstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"dubbing-backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("draft not found")
	// ErrConflict means the stored draft changed since it was read.
	ErrConflict = errors.New("draft was modified concurrently")
)

// Store holds drafts for a limited time. Drafts are transient: losing one
// only costs the user their clip selection.
type Store interface {
	Save(ctx context.Context, d *models.Draft) error
	// Update replaces a stored draft only if its version still equals prev.
	Update(ctx context.Context, d *models.Draft, prev int) error
	Get(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type memoryItem struct {
	draft   models.Draft
	expires time.Time
}

// Memory keeps drafts in process. Expired drafts are dropped on access.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[uuid.UUID]memoryItem
	now   func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, items: make(map[uuid.UUID]memoryItem), now: time.Now}
}

func (m *Memory) Save(_ context.Context, d *models.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[d.DraftID] = memoryItem{draft: *d, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Update(_ context.Context, d *models.Draft, prev int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[d.DraftID]
	if !ok || m.now().After(item.expires) {
		delete(m.items, d.DraftID)
		return ErrNotFound
	}
	if item.draft.Version != prev {
		return ErrConflict
	}
	m.items[d.DraftID] = memoryItem{draft: *d, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Get(_ context.Context, id uuid.UUID) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(item.expires) {
		delete(m.items, id)
		return nil, ErrNotFound
	}
	d := item.draft
	return &d, nil
}

func (m *Memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}
