package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
//
// All mutations run through the database's own transaction mechanism, so a
// single logical writer per device is enforced here: no two status
// transitions on the same row can interleave.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// entityTables maps entity types to their local table names. Only values
// from this map are ever interpolated into SQL.
var entityTables = map[model.EntityType]string{
	model.EntityGoal:          "goals",
	model.EntityMilestone:     "milestones",
	model.EntityStep:          "steps",
	model.EntityTask:          "tasks",
	model.EntityCalendarEvent: "calendar_events",
	model.EntityThread:        "conversation_threads",
	model.EntityMessage:       "conversation_messages",
}

func tableFor(entity model.EntityType) (string, error) {
	table, ok := entityTables[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity type %q", entity)
	}
	return table, nil
}

// MarkSynced records a push acknowledgment for a create or update: the
// row's sync state becomes synced while every other column, the task
// lifecycle included, is left alone.
func (s *SQLiteStore) MarkSynced(ctx context.Context, entity model.EntityType, id string) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET sync_status = ? WHERE id = ?", table),
		string(model.SyncSynced), id,
	)
	if err != nil {
		return fmt.Errorf("marking %s %s synced: %w", entity, id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return nil
}

// Remove hard-deletes a row. It is used once a delete push is acknowledged,
// or when the server reports the row gone. Removing an absent row is a
// no-op so acknowledgments are idempotent.
func (s *SQLiteStore) Remove(ctx context.Context, entity model.EntityType, id string) error {
	table, err := tableFor(entity)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id,
	)
	if err != nil {
		return fmt.Errorf("removing %s %s: %w", entity, id, err)
	}
	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
