package repository

import (
	"context"
	"sync/atomic"
	"time"

	"washify/internal/booking"
	"washify/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverDraftRepository uses primary until it fails, then serves from
// fallback and retries primary once per recoveryInterval.
type FailoverDraftRepository struct {
	primary   booking.DraftRepository
	fallback  booking.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverDraftRepository(primary, fallback booking.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary draft repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverDraftRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverDraftRepository) Load(ctx context.Context, key string) (*models.Draft, error) {
	if r.usePrimary() {
		draft, err := r.primary.Load(ctx, key)
		if err == nil {
			if r.isDown.CompareAndSwap(true, false) {
				r.logger.Info().Msg("primary draft repository recovered")
			}
			return draft, nil
		}
		r.markDown(err)
	}
	return r.fallback.Load(ctx, key)
}

func (r *FailoverDraftRepository) Save(ctx context.Context, key string, draft *models.Draft) error {
	if r.usePrimary() {
		err := r.primary.Save(ctx, key, draft)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Save(ctx, key, draft)
}

func (r *FailoverDraftRepository) Clear(ctx context.Context, key string) error {
	// fallback may hold a copy written while primary was down
	_ = r.fallback.Clear(ctx, key)
	if r.usePrimary() {
		err := r.primary.Clear(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return nil
		}
		r.markDown(err)
	}
	return nil
}
