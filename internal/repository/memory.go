package repository

import (
	"context"
	"sync"
	"time"

	"washify/internal/models"
)

type memoryEntry struct {
	draft     models.Draft
	expiresAt time.Time
}

// MemoryDraftRepository is the in-process draft store used when Redis is
// unavailable. A zero ttl keeps drafts forever.
type MemoryDraftRepository struct {
	drafts sync.Map
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{ttl: ttl, now: time.Now}
}

func (r *MemoryDraftRepository) Load(_ context.Context, key string) (*models.Draft, error) {
	val, ok := r.drafts.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.drafts.Delete(key)
		return nil, nil
	}
	draft := entry.draft
	draft.Packages = append([]string(nil), entry.draft.Packages...)
	return &draft, nil
}

func (r *MemoryDraftRepository) Save(_ context.Context, key string, draft *models.Draft) error {
	entry := memoryEntry{draft: *draft}
	entry.draft.Packages = append([]string(nil), draft.Packages...)
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.drafts.Store(key, entry)
	return nil
}

func (r *MemoryDraftRepository) Clear(_ context.Context, key string) error {
	r.drafts.Delete(key)
	return nil
}
