package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bMacroni/MindClear-sub005/internal/model"
	"github.com/bMacroni/MindClear-sub005/internal/store"
	"github.com/bMacroni/MindClear-sub005/tests/testutil"
)

func TestCreateCalendarEvent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := s.CreateCalendarEvent(ctx, model.CalendarEvent{
			Title:   "Backwards meeting",
			StartAt: start,
			EndAt:   start.Add(-time.Hour),
		})
		assert.True(t, store.IsValidation(err))
	})

	t.Run("links to a pending task", func(t *testing.T) {
		task, err := s.CreateTask(ctx, model.Task{Title: "Prepare slides"})
		require.NoError(t, err)

		ev, err := s.CreateCalendarEvent(ctx, model.CalendarEvent{
			TaskID:  &task.ID,
			Title:   "Work session",
			StartAt: start,
			EndAt:   start.Add(time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, model.SyncPendingCreate, ev.Status.Sync)

		listed, err := s.ListCalendarEvents(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.NotNil(t, listed[0].TaskID)
		assert.Equal(t, task.ID, *listed[0].TaskID)
	})
}

func TestConversationThreadWithMessages(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	thread, err := s.CreateThread(ctx, model.ConversationThread{Title: "Weekly planning"})
	require.NoError(t, err)

	_, err = s.CreateMessage(ctx, model.ConversationMessage{
		ThreadID: thread.ID, Role: "user", Content: "What should I focus on?",
	})
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, model.ConversationMessage{
		ThreadID: thread.ID, Role: "assistant", Content: "Start with the report.",
	})
	require.NoError(t, err)

	t.Run("messages list in creation order", func(t *testing.T) {
		messages, err := s.ListMessages(ctx, thread.ID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "user", messages[0].Role)
		assert.Equal(t, "assistant", messages[1].Role)
	})

	t.Run("message requires role and thread", func(t *testing.T) {
		_, err := s.CreateMessage(ctx, model.ConversationMessage{ThreadID: thread.ID})
		assert.True(t, store.IsValidation(err))

		_, err = s.CreateMessage(ctx, model.ConversationMessage{Role: "user"})
		assert.True(t, store.IsValidation(err))
	})

	t.Run("removing the thread removes its messages", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, model.EntityThread, thread.ID))

		messages, err := s.ListMessages(ctx, thread.ID)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})
}
