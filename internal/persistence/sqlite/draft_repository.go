package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/event-admin/internal/persistence"
)

// DraftRepository implements persistence.DraftRepository using SQLite
type DraftRepository struct {
	pool *ConnectionPool
}

// NewDraftRepository creates a new SQLite draft repository
func NewDraftRepository(pool *ConnectionPool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

// UpsertDraft inserts a draft or replaces the stored one, keeping its created_at.
func (r *DraftRepository) UpsertDraft(ctx context.Context, record persistence.DraftRecord) error {
	if record.ID == "" || record.Action == "" {
		return persistence.ErrConstraintViolation
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	query := `
		INSERT INTO drafts (id, action, name, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			action = excluded.action,
			name = excluded.name,
			body = excluded.body,
			updated_at = excluded.updated_at
	`
	_, err := r.pool.DB().ExecContext(ctx, query,
		record.ID,
		record.Action,
		record.Name,
		record.Body,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// GetDraft retrieves a draft by ID
func (r *DraftRepository) GetDraft(ctx context.Context, id string) (persistence.DraftRecord, error) {
	if id == "" {
		return persistence.DraftRecord{}, persistence.ErrNotFound
	}
	row := r.pool.DB().QueryRowContext(ctx, `
		SELECT id, action, name, body, created_at, updated_at
		FROM drafts
		WHERE id = ?
	`, id)
	return scanDraft(row)
}

// ListDrafts returns all drafts ordered by created_at then ID
func (r *DraftRepository) ListDrafts(ctx context.Context) ([]persistence.DraftRecord, error) {
	rows, err := r.pool.DB().QueryContext(ctx, `
		SELECT id, action, name, body, created_at, updated_at
		FROM drafts
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.DraftRecord
	for rows.Next() {
		record, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// DeleteDraft removes a draft by ID
func (r *DraftRepository) DeleteDraft(ctx context.Context, id string) error {
	result, err := r.pool.DB().ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (persistence.DraftRecord, error) {
	var record persistence.DraftRecord
	var createdAt, updatedAt string
	if err := row.Scan(&record.ID, &record.Action, &record.Name, &record.Body, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return persistence.DraftRecord{}, persistence.ErrNotFound
		}
		return persistence.DraftRecord{}, mapError(err)
	}

	var err error
	if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return persistence.DraftRecord{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return persistence.DraftRecord{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return record, nil
}
