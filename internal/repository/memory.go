package repository

import (
	"context"
	"sync"
	"time"

	"trailhead/internal/editor"
)

type memoryEntry struct {
	state     editor.FormState
	expiresAt time.Time
}

// MemoryFormRepository keeps sessions in process memory. Entries expire
// lazily on read.
type MemoryFormRepository struct {
	forms sync.Map
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryFormRepository(ttl time.Duration) *MemoryFormRepository {
	return &MemoryFormRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryFormRepository) GetForm(ctx context.Context, session string) (*editor.FormState, error) {
	val, ok := r.forms.Load(session)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		r.forms.Delete(session)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (r *MemoryFormRepository) SetForm(ctx context.Context, session string, state editor.FormState) error {
	r.forms.Store(session, memoryEntry{state: state, expiresAt: r.now().Add(r.ttl)})
	return nil
}

func (r *MemoryFormRepository) DeleteForm(ctx context.Context, session string) error {
	r.forms.Delete(session)
	return nil
}
