package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/event-admin/internal/application"
	"github.com/example/event-admin/internal/persistence/sqlite"
)

// SQLiteHarness provides draft storage backed by a temporary SQLite database for
// integration-style tests.
type SQLiteHarness struct {
	Pool   *sqlite.ConnectionPool
	Drafts *application.DraftStore

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	pool, err := sqlite.Open(ctx, filepath.Join(tb.TempDir(), "eventadmin.db"))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := pool.Migrate(ctx, nil); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:   pool,
		Drafts: application.NewDraftStore(sqlite.NewDraftRepository(pool)),
		cleanup: func() {
			_ = pool.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
