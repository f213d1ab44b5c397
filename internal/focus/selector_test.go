package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

func task(id string, priority model.Priority, due *time.Time, location *string) model.Task {
	return model.Task{
		ID:       id,
		Title:    "task " + id,
		Priority: priority,
		DueDate:  due,
		Location: location,
		Status:   model.Synced(model.LifecycleNotStarted),
	}
}

func datePtr(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func strPtr(s string) *string { return &s }

func TestPickNextOrdering(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
		want  string
	}{
		{
			name: "higher priority wins over earlier due date",
			tasks: []model.Task{
				task("a", model.PriorityMedium, datePtr("2026-01-01"), nil),
				task("b", model.PriorityHigh, datePtr("2026-06-01"), nil),
			},
			want: "b",
		},
		{
			name: "earlier due date breaks priority tie",
			tasks: []model.Task{
				task("a", model.PriorityHigh, datePtr("2026-06-01"), nil),
				task("b", model.PriorityHigh, datePtr("2026-01-01"), nil),
			},
			want: "b",
		},
		{
			name: "task with due date beats task without",
			tasks: []model.Task{
				task("a", model.PriorityLow, nil, nil),
				task("b", model.PriorityLow, datePtr("2026-12-31"), nil),
			},
			want: "b",
		},
		{
			name: "id breaks full tie",
			tasks: []model.Task{
				task("b", model.PriorityMedium, datePtr("2026-01-01"), nil),
				task("a", model.PriorityMedium, datePtr("2026-01-01"), nil),
			},
			want: "a",
		},
		{
			name: "unknown priority ranks below low",
			tasks: []model.Task{
				task("a", model.Priority("urgent-ish"), datePtr("2026-01-01"), nil),
				task("b", model.PriorityLow, nil, nil),
			},
			want: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PickNext(tt.tasks, "", nil, model.TravelAllowTravel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestPickNextDeterministic(t *testing.T) {
	tasks := []model.Task{
		task("c", model.PriorityHigh, nil, nil),
		task("a", model.PriorityHigh, nil, nil),
		task("b", model.PriorityHigh, nil, nil),
	}

	first, err := PickNext(tasks, "", nil, model.TravelAllowTravel)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := PickNext(tasks, "", nil, model.TravelAllowTravel)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}

	// Determinism holds with an exclusion set too.
	excluded := map[string]bool{first.ID: true}
	second, err := PickNext(tasks, "", excluded, model.TravelAllowTravel)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := PickNext(tasks, "", excluded, model.TravelAllowTravel)
		require.NoError(t, err)
		assert.Equal(t, second.ID, again.ID)
	}
}

func TestPickNextEligibility(t *testing.T) {
	t.Run("skips current focus task", func(t *testing.T) {
		tasks := []model.Task{
			task("a", model.PriorityHigh, nil, nil),
			task("b", model.PriorityLow, nil, nil),
		}
		got, err := PickNext(tasks, "a", nil, model.TravelAllowTravel)
		require.NoError(t, err)
		assert.Equal(t, "b", got.ID)
	})

	t.Run("skips completed tasks", func(t *testing.T) {
		done := task("a", model.PriorityHigh, nil, nil)
		done.Status = model.Synced(model.LifecycleCompleted)
		tasks := []model.Task{done, task("b", model.PriorityLow, nil, nil)}

		got, err := PickNext(tasks, "", nil, model.TravelAllowTravel)
		require.NoError(t, err)
		assert.Equal(t, "b", got.ID)
	})

	t.Run("skips rows awaiting delete", func(t *testing.T) {
		doomed := task("a", model.PriorityHigh, nil, nil)
		doomed.Status = model.RowStatus{Sync: model.SyncPendingDelete}
		tasks := []model.Task{doomed, task("b", model.PriorityLow, nil, nil)}

		got, err := PickNext(tasks, "", nil, model.TravelAllowTravel)
		require.NoError(t, err)
		assert.Equal(t, "b", got.ID)
	})

	t.Run("skips excluded ids", func(t *testing.T) {
		tasks := []model.Task{
			task("a", model.PriorityHigh, nil, nil),
			task("b", model.PriorityMedium, nil, nil),
			task("c", model.PriorityLow, nil, nil),
		}
		got, err := PickNext(tasks, "", map[string]bool{"a": true, "b": true}, model.TravelAllowTravel)
		require.NoError(t, err)
		assert.Equal(t, "c", got.ID)
	})

	t.Run("all tasks excluded", func(t *testing.T) {
		tasks := []model.Task{
			task("a", model.PriorityHigh, nil, nil),
			task("b", model.PriorityLow, nil, nil),
		}
		_, err := PickNext(tasks, "", map[string]bool{"a": true, "b": true}, model.TravelAllowTravel)
		assert.True(t, IsNoEligibleTask(err))
	})

	t.Run("no eligible task", func(t *testing.T) {
		done := task("a", model.PriorityHigh, nil, nil)
		done.Status = model.Synced(model.LifecycleCompleted)

		_, err := PickNext([]model.Task{done}, "", nil, model.TravelAllowTravel)
		require.Error(t, err)
		assert.True(t, IsNoEligibleTask(err))

		var ne *NoEligibleTaskError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, 1, ne.Considered)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := PickNext(nil, "", nil, model.TravelAllowTravel)
		assert.True(t, IsNoEligibleTask(err))
	})
}

func TestPickNextHomeOnly(t *testing.T) {
	t.Run("prefers tasks without a location", func(t *testing.T) {
		tasks := []model.Task{
			task("a", model.PriorityHigh, nil, strPtr("Office")),
			task("b", model.PriorityLow, nil, nil),
		}
		got, err := PickNext(tasks, "", nil, model.TravelHomeOnly)
		require.NoError(t, err)
		assert.Equal(t, "b", got.ID, "home-only should prefer the homebound task despite lower priority")
	})

	t.Run("falls back when every task has a location", func(t *testing.T) {
		tasks := []model.Task{
			task("a", model.PriorityLow, nil, strPtr("Office")),
			task("b", model.PriorityHigh, nil, strPtr("Bank")),
		}
		got, err := PickNext(tasks, "", nil, model.TravelHomeOnly)
		require.NoError(t, err)
		assert.Equal(t, "b", got.ID, "preference is soft: picking a located task beats picking nothing")
	})

	t.Run("empty string location counts as homebound", func(t *testing.T) {
		tasks := []model.Task{
			task("a", model.PriorityHigh, nil, strPtr("")),
			task("b", model.PriorityLow, nil, strPtr("Office")),
		}
		got, err := PickNext(tasks, "", nil, model.TravelHomeOnly)
		require.NoError(t, err)
		assert.Equal(t, "a", got.ID)
	})
}
