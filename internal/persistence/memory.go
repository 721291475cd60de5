package persistence

import (
	"context"
	"sort"
	"sync"
)

// MemoryDraftRepository keeps drafts in process memory. Drafts do not survive a restart.
type MemoryDraftRepository struct {
	mu     sync.RWMutex
	drafts map[string]DraftRecord
}

// NewMemoryDraftRepository returns an empty repository.
func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{drafts: make(map[string]DraftRecord)}
}

// UpsertDraft stores record, keeping the original CreatedAt of an existing draft.
func (r *MemoryDraftRepository) UpsertDraft(ctx context.Context, record DraftRecord) error {
	if record.ID == "" {
		return ErrConstraintViolation
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.drafts[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	r.drafts[record.ID] = cloneRecord(record)
	return nil
}

// GetDraft retrieves a draft by ID.
func (r *MemoryDraftRepository) GetDraft(ctx context.Context, id string) (DraftRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.drafts[id]
	if !ok {
		return DraftRecord{}, ErrNotFound
	}
	return cloneRecord(record), nil
}

// ListDrafts returns all drafts ordered by CreatedAt ascending.
func (r *MemoryDraftRepository) ListDrafts(ctx context.Context) ([]DraftRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]DraftRecord, 0, len(r.drafts))
	for _, record := range r.drafts {
		records = append(records, cloneRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// DeleteDraft removes a draft by ID.
func (r *MemoryDraftRepository) DeleteDraft(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[id]; !ok {
		return ErrNotFound
	}
	delete(r.drafts, id)
	return nil
}

func cloneRecord(record DraftRecord) DraftRecord {
	out := record
	out.Body = append([]byte(nil), record.Body...)
	return out
}
