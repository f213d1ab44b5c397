package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

// GetWatermark returns the last successful pull timestamp for an entity
// type. A zero time means the entity has never been pulled, so the next
// pull fetches everything.
func (s *SQLiteStore) GetWatermark(ctx context.Context, entity model.EntityType) (time.Time, error) {
	var pulledAt time.Time
	err := s.db.GetContext(ctx, &pulledAt,
		"SELECT pulled_at FROM sync_watermarks WHERE entity_type = ?",
		string(entity),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting watermark for %s: %w", entity, err)
	}
	return pulledAt, nil
}

// SetWatermark records the last successful pull timestamp for an entity
// type. Callers advance it only after a whole pulled batch has been applied.
func (s *SQLiteStore) SetWatermark(ctx context.Context, entity model.EntityType, pulledAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_watermarks (entity_type, pulled_at) VALUES (?, ?)
		ON CONFLICT(entity_type) DO UPDATE SET pulled_at = excluded.pulled_at`,
		string(entity), pulledAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting watermark for %s: %w", entity, err)
	}
	return nil
}
