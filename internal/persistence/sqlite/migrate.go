package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one versioned schema change.
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// LoadMigrations returns the embedded migrations ordered by version. Files are named
// NNN_description.sql.
func LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".sql")
		version, description, ok := strings.Cut(base, "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("migration %s: file name must be NNN_description.sql", entry.Name())
		}
		body, err := migrationFiles.ReadFile(path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(description, "_", " "),
			SQL:         string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Migrate applies pending migrations, each in its own transaction, and records them in
// schema_migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := cp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			execution_time_ms INTEGER
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	migrations, err := LoadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := cp.isApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		started := time.Now()
		err = cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for i, stmt := range splitStatements(m.SQL) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %s statement %d: %w", m.Version, i+1, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, applied_at, execution_time_ms) VALUES (?, ?, ?)`,
				m.Version, time.Now().UTC().Format(time.RFC3339), time.Since(started).Milliseconds())
			return err
		})
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "applied migration", "version", m.Version, "description", m.Description)
	}
	return nil
}

func (cp *ConnectionPool) isApplied(ctx context.Context, version string) (bool, error) {
	var exists int
	err := cp.db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ? LIMIT 1`, version).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return true, nil
}

// splitStatements splits a migration into statements, dropping comment-only lines.
func splitStatements(sqlText string) []string {
	var statements []string
	for _, stmt := range strings.Split(sqlText, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
