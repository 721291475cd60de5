package persistence

import "context"

// DraftRepository stores drafts between editing requests.
type DraftRepository interface {
	UpsertDraft(ctx context.Context, record DraftRecord) error
	GetDraft(ctx context.Context, id string) (DraftRecord, error)
	ListDrafts(ctx context.Context) ([]DraftRecord, error)
	DeleteDraft(ctx context.Context, id string) error
}
