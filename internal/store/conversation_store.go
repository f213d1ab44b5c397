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

const threadColumns = "id, title, sync_status, created_at, updated_at"

// CreateThread inserts a locally created conversation thread in
// pending_create state.
func (s *SQLiteStore) CreateThread(ctx context.Context, th model.ConversationThread) (model.ConversationThread, error) {
	if th.ID == "" {
		th.ID = uuid.New().String()
	}
	th.Status = model.PendingCreate("")

	now := time.Now().UTC()
	th.CreatedAt = now
	th.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_threads (`+threadColumns+`) VALUES (?, ?, ?, ?, ?)`,
		th.ID, th.Title, string(th.Status.Sync), th.CreatedAt, th.UpdatedAt,
	)
	if err != nil {
		return model.ConversationThread{}, fmt.Errorf("creating thread: %w", err)
	}
	return th, nil
}

// DeleteThread records a local delete, discarding never-pushed rows.
// Cascades to the thread's messages.
func (s *SQLiteStore) DeleteThread(ctx context.Context, id string) error {
	current, err := s.getThreadByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityThread, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE conversation_threads SET sync_status = ?, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting thread %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) getThreadByID(ctx context.Context, id string) (*model.ConversationThread, error) {
	var (
		th         model.ConversationThread
		syncStatus string
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT "+threadColumns+" FROM conversation_threads WHERE id = ?", id,
	).Scan(&th.ID, &th.Title, &syncStatus, &th.CreatedAt, &th.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting thread %s: %w", id, err)
	}
	th.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
	return &th, nil
}

// ListThreads returns all threads newest first, excluding pending deletes.
func (s *SQLiteStore) ListThreads(ctx context.Context) ([]model.ConversationThread, error) {
	return s.queryThreads(ctx,
		"SELECT "+threadColumns+" FROM conversation_threads WHERE sync_status != ? ORDER BY updated_at DESC, id",
		string(model.SyncPendingDelete),
	)
}

// ListPendingThreads returns every thread with unpushed local work.
func (s *SQLiteStore) ListPendingThreads(ctx context.Context) ([]model.ConversationThread, error) {
	return s.queryThreads(ctx,
		"SELECT "+threadColumns+" FROM conversation_threads WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) queryThreads(ctx context.Context, query string, args ...interface{}) ([]model.ConversationThread, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying threads: %w", err)
	}
	defer rows.Close()

	var threads []model.ConversationThread
	for rows.Next() {
		var (
			th         model.ConversationThread
			syncStatus string
		)
		if err := rows.Scan(&th.ID, &th.Title, &syncStatus, &th.CreatedAt, &th.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning thread row: %w", err)
		}
		th.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
		threads = append(threads, th)
	}
	return threads, rows.Err()
}

// ApplyRemoteThread merges a server thread under the pending-wins rule.
func (s *SQLiteStore) ApplyRemoteThread(ctx context.Context, th model.ConversationThread) (bool, error) {
	current, err := s.getThreadByID(ctx, th.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_threads (`+threadColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, sync_status = excluded.sync_status,
			updated_at = excluded.updated_at`,
		th.ID, th.Title, string(model.SyncSynced), th.CreatedAt, th.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote thread %s: %w", th.ID, err)
	}
	return true, nil
}

const messageColumns = "id, thread_id, role, content, sync_status, created_at, updated_at"

// CreateMessage inserts a locally created conversation message in
// pending_create state. The thread may itself still be pending_create.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg model.ConversationMessage) (model.ConversationMessage, error) {
	if msg.ThreadID == "" {
		return model.ConversationMessage{}, &ValidationError{Entity: "message", Field: "thread_id", Message: "must not be empty"}
	}
	if strings.TrimSpace(msg.Role) == "" {
		return model.ConversationMessage{}, &ValidationError{Entity: "message", Field: "role", Message: "must not be empty"}
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.Status = model.PendingCreate("")

	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.Role, msg.Content,
		string(msg.Status.Sync), msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		return model.ConversationMessage{}, fmt.Errorf("creating message: %w", err)
	}
	return msg, nil
}

// DeleteMessage records a local delete, discarding never-pushed rows.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id string) error {
	current, err := s.getMessageByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityMessage, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE conversation_messages SET sync_status = ?, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting message %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) getMessageByID(ctx context.Context, id string) (*model.ConversationMessage, error) {
	var (
		msg        model.ConversationMessage
		syncStatus string
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT "+messageColumns+" FROM conversation_messages WHERE id = ?", id,
	).Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content, &syncStatus, &msg.CreatedAt, &msg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", id, err)
	}
	msg.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
	return &msg, nil
}

// ListMessages returns a thread's messages in creation order, excluding
// pending deletes.
func (s *SQLiteStore) ListMessages(ctx context.Context, threadID string) ([]model.ConversationMessage, error) {
	return s.queryMessages(ctx,
		"SELECT "+messageColumns+" FROM conversation_messages WHERE thread_id = ? AND sync_status != ? ORDER BY created_at, id",
		threadID, string(model.SyncPendingDelete),
	)
}

// ListPendingMessages returns every message with unpushed local work.
func (s *SQLiteStore) ListPendingMessages(ctx context.Context) ([]model.ConversationMessage, error) {
	return s.queryMessages(ctx,
		"SELECT "+messageColumns+" FROM conversation_messages WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...interface{}) ([]model.ConversationMessage, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ConversationMessage
	for rows.Next() {
		var (
			msg        model.ConversationMessage
			syncStatus string
		)
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &msg.Role, &msg.Content, &syncStatus, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		msg.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ApplyRemoteMessage merges a server message under the pending-wins rule.
func (s *SQLiteStore) ApplyRemoteMessage(ctx context.Context, msg model.ConversationMessage) (bool, error) {
	current, err := s.getMessageByID(ctx, msg.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			thread_id = excluded.thread_id, role = excluded.role,
			content = excluded.content, sync_status = excluded.sync_status,
			updated_at = excluded.updated_at`,
		msg.ID, msg.ThreadID, msg.Role, msg.Content,
		string(model.SyncSynced), msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote message %s: %w", msg.ID, err)
	}
	return true, nil
}
