package sync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncengine "github.com/bMacroni/MindClear-sub005/internal/sync"
	"github.com/bMacroni/MindClear-sub005/tests/testutil"
)

func TestRunnerRunsInitialCycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	engine := newEngine(t, s, api)

	results := make(chan syncengine.Result, 4)
	runner := syncengine.NewRunner(engine, time.Hour, zap.NewNop(), func(res syncengine.Result, err error) {
		results <- res
	})

	runner.Start()
	defer runner.Stop()

	select {
	case res := <-results:
		assert.False(t, res.Skipped)
	case <-time.After(5 * time.Second):
		t.Fatal("no cycle ran after start")
	}
}

func TestRunnerTriggerRunsExtraCycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	engine := newEngine(t, s, api)

	results := make(chan syncengine.Result, 4)
	runner := syncengine.NewRunner(engine, time.Hour, zap.NewNop(), func(res syncengine.Result, err error) {
		results <- res
	})

	runner.Start()
	defer runner.Stop()

	require.Eventually(t, func() bool { return len(results) >= 1 }, 5*time.Second, 10*time.Millisecond)

	runner.TriggerSync()
	require.Eventually(t, func() bool { return len(results) >= 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	api := newFakeAPI()
	engine := newEngine(t, s, api)

	runner := syncengine.NewRunner(engine, time.Hour, zap.NewNop(), nil)
	runner.Start()
	runner.Stop()
	runner.Stop()
}
