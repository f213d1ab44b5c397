package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bMacroni/MindClear-sub005/internal/model"
	"github.com/bMacroni/MindClear-sub005/tests/testutil"
)

func TestWatermarks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	t.Run("unset watermark is zero", func(t *testing.T) {
		got, err := s.GetWatermark(ctx, model.EntityTask)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("round trips and overwrites", func(t *testing.T) {
		first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.SetWatermark(ctx, model.EntityTask, first))

		got, err := s.GetWatermark(ctx, model.EntityTask)
		require.NoError(t, err)
		assert.True(t, got.Equal(first))

		second := first.Add(time.Hour)
		require.NoError(t, s.SetWatermark(ctx, model.EntityTask, second))

		got, err = s.GetWatermark(ctx, model.EntityTask)
		require.NoError(t, err)
		assert.True(t, got.Equal(second))
	})

	t.Run("entities track independently", func(t *testing.T) {
		mark := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.SetWatermark(ctx, model.EntityGoal, mark))

		got, err := s.GetWatermark(ctx, model.EntityThread)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})
}
