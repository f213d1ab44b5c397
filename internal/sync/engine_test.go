package sync_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bMacroni/MindClear-sub005/internal/model"
	"github.com/bMacroni/MindClear-sub005/internal/remote"
	"github.com/bMacroni/MindClear-sub005/internal/store"
	syncengine "github.com/bMacroni/MindClear-sub005/internal/sync"
	"github.com/bMacroni/MindClear-sub005/tests/testutil"
)

// fakeAPI is an in-memory stand-in for the sync server. It records every
// write in arrival order and serves canned pull responses.
type fakeAPI struct {
	mu        gosync.Mutex
	creates   []string          // "entity:id" in arrival order
	updates   []string
	deletes   []string
	statusFor map[string]int    // "METHOD entity" -> forced HTTP status
	failOnce  map[string]int    // "METHOD entity" -> count of 500s after processing
	pulls     map[string]string // entity -> JSON array served on GET
	lastSince map[string]string // entity -> updatedSince param of last GET
	gate      chan struct{}     // when non-nil, every request blocks on it
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		statusFor: make(map[string]int),
		failOnce:  make(map[string]int),
		pulls:     make(map[string]string),
		lastSince: make(map[string]string),
	}
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	if f.gate != nil {
		<-f.gate
	}

	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	entity, id := splitPath(r.URL.Path)

	// failOnce simulates a lost acknowledgment: the server processes the
	// write but the response never reaches the client.
	f.mu.Lock()
	if n := f.failOnce[r.Method+" "+entity]; n > 0 {
		f.failOnce[r.Method+" "+entity] = n - 1
		if r.Method == http.MethodPost {
			var payload struct {
				ID string `json:"id"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			f.creates = append(f.creates, entity+":"+payload.ID)
		}
		f.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	forced := f.statusFor[r.Method+" "+entity]
	f.mu.Unlock()

	if forced != 0 {
		if forced == http.StatusUnprocessableEntity {
			w.WriteHeader(forced)
			fmt.Fprint(w, `{"error":"validation_failed","message":"title too long"}`)
			return
		}
		w.WriteHeader(forced)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.mu.Lock()
		f.lastSince[entity] = r.URL.Query().Get("updatedSince")
		body := f.pulls[entity]
		f.mu.Unlock()
		if body == "" {
			body = "[]"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)

	case http.MethodPost:
		var payload struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.creates = append(f.creates, entity+":"+payload.ID)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)

	case http.MethodPut:
		f.mu.Lock()
		f.updates = append(f.updates, entity+":"+id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		f.mu.Lock()
		f.deletes = append(f.deletes, entity+":"+id)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func splitPath(path string) (entity, id string) {
	trimmed := path[1:]
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] == '/' {
			return trimmed[:i], trimmed[i+1:]
		}
	}
	return trimmed, ""
}

func newEngine(t *testing.T, s *store.SQLiteStore, api *fakeAPI) *syncengine.Engine {
	t.Helper()
	srv := api.server(t)
	client := remote.NewClient(srv.URL, "test-token", 5*time.Second)
	return syncengine.NewEngine(s, client, zap.NewNop())
}

func TestSyncPushesParentsBeforeChildren(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	engine := newEngine(t, s, api)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, model.Goal{Title: "Learn guitar"})
	require.NoError(t, err)
	milestone, err := s.CreateMilestone(ctx, model.Milestone{GoalID: goal.ID, Title: "First chords"})
	require.NoError(t, err)
	task, err := s.CreateTask(ctx, model.Task{Title: "Buy a guitar", GoalID: &goal.ID})
	require.NoError(t, err)

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pushed)

	require.Equal(t, []string{
		"goals:" + goal.ID,
		"milestones:" + milestone.ID,
		"tasks:" + task.ID,
	}, api.creates, "creates must arrive parent before child with the local ids reused")

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncSynced, got.Status.Sync)
}

func TestSyncPushesDeletes(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	engine := newEngine(t, s, api)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, model.Task{Title: "Old chore"})
	require.NoError(t, err)
	require.NoError(t, s.MarkSynced(ctx, model.EntityTask, task.ID))
	require.NoError(t, s.DeleteTask(ctx, task.ID))

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)
	assert.Equal(t, []string{"tasks:" + task.ID}, api.deletes)

	_, err = s.GetTaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound, "acknowledged delete removes the local row")
}

func TestSyncDiscardsRowsGoneFromServer(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.statusFor["PUT tasks"] = http.StatusNotFound
	engine := newEngine(t, s, api)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, model.Task{Title: "Stale edit"})
	require.NoError(t, err)
	require.NoError(t, s.MarkSynced(ctx, model.EntityTask, task.ID))
	task.Title = "Edited after server delete"
	_, err = s.UpdateTask(ctx, task)
	require.NoError(t, err)

	res, err := engine.Sync(ctx)
	require.NoError(t, err, "a 404 is a per-row outcome, not a cycle failure")
	assert.Equal(t, 1, res.Discarded)

	_, err = s.GetTaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSyncKeepsNeverPushedRowsOnCreate404(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.statusFor["POST tasks"] = http.StatusNotFound
	engine := newEngine(t, s, api)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, model.Task{Title: "Route went missing"})
	require.NoError(t, err)

	_, err = engine.Sync(ctx)
	require.Error(t, err, "a 404 on a create means a broken endpoint, not a server-side delete")

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncPendingCreate, got.Status.Sync, "never-pushed work must survive")
}

func TestSyncResendsCreateAfterLostAck(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.failOnce["POST tasks"] = 1
	engine := newEngine(t, s, api)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, model.Task{Title: "Acked but unheard"})
	require.NoError(t, err)

	_, err = engine.Sync(ctx)
	require.Error(t, err, "the lost acknowledgment aborts the cycle")

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, model.SyncPendingCreate, got.Status.Sync)

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed)

	// Both attempts carried the same client-chosen id, so the server saw
	// one logical row twice instead of two rows.
	require.Equal(t, []string{"tasks:" + task.ID, "tasks:" + task.ID}, api.creates)

	got, err = s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncSynced, got.Status.Sync)

	listed, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestSyncKeepsRejectedRowsPending(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.statusFor["POST tasks"] = http.StatusUnprocessableEntity
	engine := newEngine(t, s, api)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, model.Task{Title: "Rejected"})
	require.NoError(t, err)
	goal, err := s.CreateGoal(ctx, model.Goal{Title: "Unaffected"})
	require.NoError(t, err)

	res, err := engine.Sync(ctx)
	require.Error(t, err)
	assert.True(t, remote.IsValidation(err), "rejections surface to the caller")
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, 1, res.Pushed, "other rows still push in the same cycle")

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncPendingCreate, got.Status.Sync, "rejected work is kept, not dropped")

	g, err := s.GetGoalByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncSynced, g.Status.Sync)
}

func TestSyncAbortsOnNetworkError(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.statusFor["POST goals"] = http.StatusInternalServerError
	engine := newEngine(t, s, api)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, model.Goal{Title: "Unlucky"})
	require.NoError(t, err)

	_, err = engine.Sync(ctx)
	require.Error(t, err)
	assert.True(t, remote.IsNetwork(err))

	got, err := s.GetGoalByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncPendingCreate, got.Status.Sync, "rows stay pending for the next cycle")
}

func TestSyncPullsServerRows(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	engine := newEngine(t, s, api)
	ctx := context.Background()

	older := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(2 * time.Hour)
	api.pulls["tasks"] = fmt.Sprintf(`[
		{"id":"t1","title":"From server","priority":"high","status":"in_progress","created_at":%q,"updated_at":%q},
		{"id":"t2","title":"Also from server","priority":"low","status":"not_started","created_at":%q,"updated_at":%q}
	]`, older.Format(time.RFC3339), newer.Format(time.RFC3339),
		older.Format(time.RFC3339), older.Format(time.RFC3339))

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pulled)

	got, err := s.GetTaskByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.SyncSynced, got.Status.Sync)
	assert.Equal(t, model.LifecycleInProgress, got.Status.Lifecycle)

	mark, err := s.GetWatermark(ctx, model.EntityTask)
	require.NoError(t, err)
	assert.True(t, mark.Equal(newer), "watermark advances to the newest updated_at in the batch")

	// A second cycle requests only the delta.
	_, err = engine.Sync(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, api.lastSince["tasks"])
}

func TestSyncPullDefersToPendingLocalWork(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.statusFor["POST tasks"] = http.StatusUnprocessableEntity
	engine := newEngine(t, s, api)
	ctx := context.Background()

	local, err := s.CreateTask(ctx, model.Task{ID: "t1", Title: "Local wins"})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	api.pulls["tasks"] = fmt.Sprintf(
		`[{"id":"t1","title":"Server version","status":"not_started","created_at":%q,"updated_at":%q}]`,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)

	res, err := engine.Sync(ctx)
	require.Error(t, err) // push was rejected, pull still ran
	assert.Equal(t, 1, res.Deferred)

	got, err := s.GetTaskByID(ctx, local.ID)
	require.NoError(t, err)
	assert.Equal(t, "Local wins", got.Title)
	assert.Equal(t, model.SyncPendingCreate, got.Status.Sync)
}

func TestSyncSkipsWhenCycleInFlight(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	api.gate = make(chan struct{})
	engine := newEngine(t, s, api)
	ctx := context.Background()

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = engine.Sync(ctx)
		close(done)
	}()

	<-started
	// Give the first cycle time to reach the blocked server call.
	time.Sleep(50 * time.Millisecond)

	res, err := engine.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(api.gate)
	<-done
}
