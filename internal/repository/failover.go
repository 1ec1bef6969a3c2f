package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"trailhead/internal/domain"
	"trailhead/internal/editor"

	"github.com/rs/zerolog"
)

// recoveryInterval is how long the primary stays bypassed after a failure.
const recoveryInterval = time.Minute

// FailoverFormRepository writes to the primary (Redis) until it fails, then
// serves from the fallback until the primary answers again.
type FailoverFormRepository struct {
	primary   domain.FormRepository
	fallback  domain.FormRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverFormRepository(primary, fallback domain.FormRepository, logger *zerolog.Logger) *FailoverFormRepository {
	return &FailoverFormRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverFormRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary form repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverFormRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverFormRepository) GetForm(ctx context.Context, session string) (*editor.FormState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetForm(ctx, session)
		if err == nil {
			if r.isDown.Swap(false) {
				r.logger.Info().Msg("Primary form repository recovered")
			}
			if state != nil {
				return state, nil
			}
			// Sessions written during an outage only exist in the fallback.
			return r.fallback.GetForm(ctx, session)
		}
		r.markDown(err)
	}

	return r.fallback.GetForm(ctx, session)
}

func (r *FailoverFormRepository) SetForm(ctx context.Context, session string, state editor.FormState) error {
	if r.usePrimary() {
		err := r.primary.SetForm(ctx, session, state)
		if err == nil {
			r.isDown.Store(false)
			return r.fallback.DeleteForm(ctx, session)
		}
		r.markDown(err)
	}

	return r.fallback.SetForm(ctx, session, state)
}

func (r *FailoverFormRepository) DeleteForm(ctx context.Context, session string) error {
	if r.usePrimary() {
		if err := r.primary.DeleteForm(ctx, session); err != nil {
			r.markDown(err)
		}
	}

	return r.fallback.DeleteForm(ctx, session)
}
