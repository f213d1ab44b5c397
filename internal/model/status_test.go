package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterLocalEdit(t *testing.T) {
	t.Run("pending create stays pending create", func(t *testing.T) {
		st := PendingCreate(LifecycleNotStarted).AfterLocalEdit(LifecycleInProgress)
		assert.Equal(t, SyncPendingCreate, st.Sync)
		assert.Equal(t, LifecycleInProgress, st.Lifecycle)
	})

	t.Run("synced becomes pending update", func(t *testing.T) {
		st := Synced(LifecycleNotStarted).AfterLocalEdit(LifecycleInProgress)
		assert.Equal(t, SyncPendingUpdate, st.Sync)
		assert.Equal(t, LifecycleInProgress, st.Lifecycle)
	})

	t.Run("pending update stays pending update", func(t *testing.T) {
		st := RowStatus{Sync: SyncPendingUpdate, Lifecycle: LifecycleInProgress}.
			AfterLocalEdit(LifecycleCompleted)
		assert.Equal(t, SyncPendingUpdate, st.Sync)
		assert.Equal(t, LifecycleCompleted, st.Lifecycle)
	})
}

func TestAfterLocalDelete(t *testing.T) {
	st := Synced(LifecycleInProgress).AfterLocalDelete()
	assert.Equal(t, SyncPendingDelete, st.Sync)
	assert.Equal(t, LifecycleInProgress, st.Lifecycle)
}

func TestAfterPushAck(t *testing.T) {
	st := RowStatus{Sync: SyncPendingUpdate, Lifecycle: LifecycleCompleted}.AfterPushAck()
	assert.Equal(t, SyncSynced, st.Sync)
	assert.Equal(t, LifecycleCompleted, st.Lifecycle, "acknowledging a push must not disturb the lifecycle")
}

func TestIsPending(t *testing.T) {
	assert.False(t, Synced(LifecycleInProgress).IsPending())
	assert.True(t, PendingCreate("").IsPending())
	assert.True(t, RowStatus{Sync: SyncPendingUpdate}.IsPending())
	assert.True(t, RowStatus{Sync: SyncPendingDelete}.IsPending())
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		status RowStatus
		want   string
	}{
		{"synced drops lifecycle", Synced(LifecycleInProgress), "synced"},
		{"pending create with lifecycle", PendingCreate(LifecycleInProgress), "pending_create:in_progress"},
		{"pending update with lifecycle", RowStatus{Sync: SyncPendingUpdate, Lifecycle: LifecycleCompleted}, "pending_update:completed"},
		{"pending create without lifecycle", PendingCreate(""), "pending_create"},
		{"pending delete drops lifecycle", RowStatus{Sync: SyncPendingDelete, Lifecycle: LifecycleInProgress}, "pending_delete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Encode())
		})
	}
}

func TestParseRowStatus(t *testing.T) {
	t.Run("round trips pending forms", func(t *testing.T) {
		for _, raw := range []string{
			"synced",
			"pending_create",
			"pending_create:in_progress",
			"pending_update:completed",
			"pending_delete",
		} {
			st, err := ParseRowStatus(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, raw, st.Encode())
		}
	})

	t.Run("rejects unknown sync state", func(t *testing.T) {
		_, err := ParseRowStatus("deleted")
		assert.Error(t, err)
	})

	t.Run("rejects unknown lifecycle", func(t *testing.T) {
		_, err := ParseRowStatus("pending_update:paused")
		assert.Error(t, err)
	})

	t.Run("rejects lifecycle on synced", func(t *testing.T) {
		_, err := ParseRowStatus("synced:in_progress")
		assert.Error(t, err)
	})
}
