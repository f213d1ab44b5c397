package sync

import (
	"context"
	gosync "sync"
	"time"

	"go.uber.org/zap"
)

// cycleTimeout is the maximum time allowed for a single sync cycle.
const cycleTimeout = 60 * time.Second

// Runner drives the engine in the background: one cycle at startup, one per
// interval tick, and one per manual trigger. Triggers arriving while a cycle
// runs coalesce into at most one queued cycle.
type Runner struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger
	onResult func(Result, error)

	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// NewRunner creates a background runner for the engine. onResult, if
// non-nil, is called after every cycle with its outcome; it runs on the
// runner's goroutine and must not block.
func NewRunner(engine *Engine, interval time.Duration, logger *zap.Logger, onResult func(Result, error)) *Runner {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		engine:    engine,
		interval:  interval,
		logger:    logger,
		onResult:  onResult,
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the background loop. Calling Start on a running runner is
// a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	go r.loop()
}

// Stop halts the background loop. Safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
}

// TriggerSync requests an immediate cycle without blocking. A trigger that
// arrives while one is already queued is dropped; the queued cycle covers
// both.
func (r *Runner) TriggerSync() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

func (r *Runner) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Initial cycle so a freshly started client converges without waiting
	// a full interval.
	r.runCycle()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runCycle()
		case <-r.triggerCh:
			r.runCycle()
		}
	}
}

func (r *Runner) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout)
	defer cancel()

	res, err := r.engine.Sync(ctx)
	if err != nil {
		r.logger.Warn("sync cycle failed", zap.Error(err))
	}
	if r.onResult != nil {
		r.onResult(res, err)
	}
}
