package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

const taskColumns = `id, goal_id, title, description, priority, due_date, location,
	estimated_duration_minutes, is_today_focus, completed_at, sync_status, lifecycle,
	created_at, updated_at`

// CreateTask inserts a locally created task in pending_create state.
// Generates a UUID if ID is empty; the id is durable and the server accepts
// it as the primary key, so foreign keys recorded before the first push
// stay valid.
func (s *SQLiteStore) CreateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return model.Task{}, &ValidationError{Entity: "task", Field: "title", Message: "must not be empty"}
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	lc := t.Status.Lifecycle
	if lc == "" {
		lc = model.LifecycleNotStarted
	}
	t.Status = model.PendingCreate(lc)

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.GoalID, t.Title, t.Description, string(t.Priority), t.DueDate, t.Location,
		t.EstimatedDurationMinutes, boolToInt(t.IsTodayFocus), t.CompletedAt,
		string(t.Status.Sync), string(t.Status.Lifecycle),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a local edit to an existing task. The sync state
// transitions per the status machine: a never-pushed row stays
// pending_create, everything else becomes pending_update. An empty
// lifecycle on the input keeps the stored one.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return model.Task{}, &ValidationError{Entity: "task", Field: "title", Message: "must not be empty"}
	}

	current, err := s.GetTaskByID(ctx, t.ID)
	if err != nil {
		return model.Task{}, err
	}

	lc := t.Status.Lifecycle
	if lc == "" {
		lc = current.Status.Lifecycle
	}
	t.Status = current.Status.AfterLocalEdit(lc)

	now := time.Now().UTC()
	t.CreatedAt = current.CreatedAt
	t.UpdatedAt = now

	// Auto-manage completed_at based on lifecycle.
	if lc == model.LifecycleCompleted {
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET
			goal_id = ?, title = ?, description = ?, priority = ?,
			due_date = ?, location = ?, estimated_duration_minutes = ?,
			is_today_focus = ?, completed_at = ?, sync_status = ?, lifecycle = ?,
			updated_at = ?
		WHERE id = ?`,
		t.GoalID, t.Title, t.Description, string(t.Priority),
		t.DueDate, t.Location, t.EstimatedDurationMinutes,
		boolToInt(t.IsTodayFocus), t.CompletedAt,
		string(t.Status.Sync), string(t.Status.Lifecycle),
		t.UpdatedAt, t.ID,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	return t, nil
}

// DeleteTask records a local delete. A row still in pending_create was
// never seen by the server, so it is discarded outright and leaves no
// trace; anything else becomes pending_delete and is retained for the push
// retry loop.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	current, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityTask, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET sync_status = ?, is_today_focus = 0, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// GetTaskByID retrieves a single task by ID regardless of sync state.
// Business-logic reads go through ListTasks, which hides pending deletes.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns all tasks except those awaiting a delete acknowledgment.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncPendingDelete),
	)
}

// ListPendingTasks returns every task with unpushed local work, oldest
// first so pushes replay in the order the mutations happened.
func (s *SQLiteStore) ListPendingTasks(ctx context.Context) ([]model.Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ApplyRemoteTask merges a server row into the local store. Missing rows
// are inserted as synced; a synced local row is overwritten (server
// authoritative); a row with pending local work is left untouched and the
// merge is reported as deferred. Returns whether the row was applied.
//
// A focus-flagged server row displaces the flag from whichever local row
// holds it (focus moved on another device), in the same transaction so the
// single-focus invariant never breaks mid-merge. If the local holder has
// pending work the merge defers instead: the local focus change is about to
// be pushed and the server's answer arrives with the next delta.
func (s *SQLiteStore) ApplyRemoteTask(ctx context.Context, t model.Task) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning merge transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getTaskTx(ctx, tx, t.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	if t.IsTodayFocus {
		holder, err := getFocusHolderTx(ctx, tx, t.ID)
		if err != nil {
			return false, err
		}
		if holder != nil {
			if holder.Status.IsPending() {
				return false, nil
			}
			_, err = tx.ExecContext(ctx,
				"UPDATE tasks SET is_today_focus = 0 WHERE id = ?", holder.ID,
			)
			if err != nil {
				return false, fmt.Errorf("displacing focus from task %s: %w", holder.ID, err)
			}
		}
	}

	if t.Status.Lifecycle == "" {
		t.Status.Lifecycle = model.LifecycleNotStarted
	}
	t.Status.Sync = model.SyncSynced

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal_id = excluded.goal_id, title = excluded.title,
			description = excluded.description, priority = excluded.priority,
			due_date = excluded.due_date, location = excluded.location,
			estimated_duration_minutes = excluded.estimated_duration_minutes,
			is_today_focus = excluded.is_today_focus,
			completed_at = excluded.completed_at,
			sync_status = excluded.sync_status, lifecycle = excluded.lifecycle,
			updated_at = excluded.updated_at`,
		t.ID, t.GoalID, t.Title, t.Description, string(t.Priority), t.DueDate, t.Location,
		t.EstimatedDurationMinutes, boolToInt(t.IsTodayFocus), t.CompletedAt,
		string(t.Status.Sync), string(t.Status.Lifecycle),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote task %s: %w", t.ID, err)
	}
	return true, tx.Commit()
}

// getFocusHolderTx returns the task holding the focus flag, excluding id,
// or nil when no other row holds it.
func getFocusHolderTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.Task, error) {
	row := tx.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE is_today_focus = 1 AND id != ?", id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding focus holder: %w", err)
	}
	return &t, nil
}

// SetFocusTask marks nextID as today's focus task and unsets previousID
// (when given) in a single transaction, so exactly one task carries the
// flag afterward. Both rows take a local-edit status transition with their
// lifecycle unchanged, and the focus task's estimated duration is floored
// at MinEstimatedDurationMinutes when missing, zero, or negative.
func (s *SQLiteStore) SetFocusTask(ctx context.Context, previousID, nextID string) error {
	if nextID == "" {
		return &ValidationError{Entity: "task", Field: "id", Message: "focus task id must not be empty"}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning focus transaction: %w", err)
	}
	defer tx.Rollback()

	next, err := getTaskTx(ctx, tx, nextID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	if previousID != "" && previousID != nextID {
		prev, err := getTaskTx(ctx, tx, previousID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if prev != nil && prev.IsTodayFocus {
			st := prev.Status.AfterLocalEdit(prev.Status.Lifecycle)
			_, err = tx.ExecContext(ctx,
				"UPDATE tasks SET is_today_focus = 0, sync_status = ?, updated_at = ? WHERE id = ?",
				string(st.Sync), now, prev.ID,
			)
			if err != nil {
				return fmt.Errorf("unsetting focus on task %s: %w", prev.ID, err)
			}
		}
	}

	duration := next.EstimatedDurationMinutes
	if duration <= 0 {
		duration = model.MinEstimatedDurationMinutes
	}
	st := next.Status.AfterLocalEdit(next.Status.Lifecycle)
	_, err = tx.ExecContext(ctx, `
		UPDATE tasks SET is_today_focus = 1, estimated_duration_minutes = ?,
			sync_status = ?, updated_at = ?
		WHERE id = ?`,
		duration, string(st.Sync), now, next.ID,
	)
	if err != nil {
		return fmt.Errorf("setting focus on task %s: %w", next.ID, err)
	}

	return tx.Commit()
}

func getTaskTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.Task, error) {
	row := tx.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

// scanTask scans a task row from a sqlx row or rows value.
func scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		t          model.Task
		goalID     *string
		dueDate    *time.Time
		location   *string
		focusInt   int
		completed  *time.Time
		syncStatus string
		lifecycle  string
	)

	err := row.Scan(
		&t.ID, &goalID, &t.Title, &t.Description, &t.Priority, &dueDate, &location,
		&t.EstimatedDurationMinutes, &focusInt, &completed, &syncStatus, &lifecycle,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	t.GoalID = goalID
	t.DueDate = dueDate
	t.Location = location
	t.IsTodayFocus = focusInt != 0
	t.CompletedAt = completed
	t.Status = model.RowStatus{
		Sync:      model.SyncState(syncStatus),
		Lifecycle: model.Lifecycle(lifecycle),
	}

	return t, nil
}
