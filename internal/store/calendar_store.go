package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

const eventColumns = "id, task_id, title, description, location, start_at, end_at, sync_status, created_at, updated_at"

// CreateCalendarEvent inserts a locally created event in pending_create
// state. The linked task may itself still be pending_create.
func (s *SQLiteStore) CreateCalendarEvent(ctx context.Context, ev model.CalendarEvent) (model.CalendarEvent, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return model.CalendarEvent{}, &ValidationError{Entity: "calendar event", Field: "title", Message: "must not be empty"}
	}
	if ev.StartAt.IsZero() || ev.EndAt.IsZero() {
		return model.CalendarEvent{}, &ValidationError{Entity: "calendar event", Field: "start_at/end_at", Message: "must be set"}
	}
	if ev.EndAt.Before(ev.StartAt) {
		return model.CalendarEvent{}, &ValidationError{Entity: "calendar event", Field: "end_at", Message: "must not precede start_at"}
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	ev.Status = model.PendingCreate("")

	now := time.Now().UTC()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.TaskID, ev.Title, ev.Description, ev.Location,
		ev.StartAt.UTC(), ev.EndAt.UTC(),
		string(ev.Status.Sync), ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("creating calendar event: %w", err)
	}
	return ev, nil
}

// UpdateCalendarEvent applies a local edit to an existing event.
func (s *SQLiteStore) UpdateCalendarEvent(ctx context.Context, ev model.CalendarEvent) (model.CalendarEvent, error) {
	if strings.TrimSpace(ev.Title) == "" {
		return model.CalendarEvent{}, &ValidationError{Entity: "calendar event", Field: "title", Message: "must not be empty"}
	}
	if ev.EndAt.Before(ev.StartAt) {
		return model.CalendarEvent{}, &ValidationError{Entity: "calendar event", Field: "end_at", Message: "must not precede start_at"}
	}

	current, err := s.getCalendarEventByID(ctx, ev.ID)
	if err != nil {
		return model.CalendarEvent{}, err
	}

	ev.Status = current.Status.AfterLocalEdit("")
	ev.CreatedAt = current.CreatedAt
	ev.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE calendar_events SET task_id = ?, title = ?, description = ?,
			location = ?, start_at = ?, end_at = ?, sync_status = ?, updated_at = ?
		WHERE id = ?`,
		ev.TaskID, ev.Title, ev.Description, ev.Location,
		ev.StartAt.UTC(), ev.EndAt.UTC(),
		string(ev.Status.Sync), ev.UpdatedAt, ev.ID,
	)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("updating calendar event %s: %w", ev.ID, err)
	}
	return ev, nil
}

// DeleteCalendarEvent records a local delete, discarding never-pushed rows.
func (s *SQLiteStore) DeleteCalendarEvent(ctx context.Context, id string) error {
	current, err := s.getCalendarEventByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityCalendarEvent, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE calendar_events SET sync_status = ?, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting calendar event %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) getCalendarEventByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE id = ?", id)

	ev, err := scanCalendarEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("calendar event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting calendar event %s: %w", id, err)
	}
	return &ev, nil
}

// ListCalendarEvents returns all events in start order, excluding pending
// deletes.
func (s *SQLiteStore) ListCalendarEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	return s.queryCalendarEvents(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE sync_status != ? ORDER BY start_at, id",
		string(model.SyncPendingDelete),
	)
}

// ListPendingCalendarEvents returns every event with unpushed local work.
func (s *SQLiteStore) ListPendingCalendarEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	return s.queryCalendarEvents(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) queryCalendarEvents(ctx context.Context, query string, args ...interface{}) ([]model.CalendarEvent, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying calendar events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		ev, err := scanCalendarEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning calendar event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ApplyRemoteCalendarEvent merges a server event under the pending-wins rule.
func (s *SQLiteStore) ApplyRemoteCalendarEvent(ctx context.Context, ev model.CalendarEvent) (bool, error) {
	current, err := s.getCalendarEventByID(ctx, ev.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calendar_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id, title = excluded.title,
			description = excluded.description, location = excluded.location,
			start_at = excluded.start_at, end_at = excluded.end_at,
			sync_status = excluded.sync_status, updated_at = excluded.updated_at`,
		ev.ID, ev.TaskID, ev.Title, ev.Description, ev.Location,
		ev.StartAt.UTC(), ev.EndAt.UTC(),
		string(model.SyncSynced), ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote calendar event %s: %w", ev.ID, err)
	}
	return true, nil
}

// scanCalendarEvent scans an event row from a sqlx row or rows value.
func scanCalendarEvent(row interface{ Scan(dest ...interface{}) error }) (model.CalendarEvent, error) {
	var (
		ev         model.CalendarEvent
		taskID     *string
		location   *string
		syncStatus string
	)

	err := row.Scan(
		&ev.ID, &taskID, &ev.Title, &ev.Description, &location,
		&ev.StartAt, &ev.EndAt, &syncStatus, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return model.CalendarEvent{}, err
	}

	ev.TaskID = taskID
	ev.Location = location
	ev.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
	return ev, nil
}
