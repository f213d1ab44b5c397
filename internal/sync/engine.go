package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/bMacroni/MindClear-sub005/internal/model"
	"github.com/bMacroni/MindClear-sub005/internal/remote"
	"github.com/bMacroni/MindClear-sub005/internal/store"
)

// Engine runs the push/pull synchronization between the local store and the
// remote API.
//
// A cycle pushes pending rows first, parents before children, then pulls
// server deltas per entity using the stored watermarks. Cycles never run
// concurrently: a Sync call that finds another cycle in flight returns
// immediately with Skipped set rather than queueing behind it.
type Engine struct {
	store  store.Store
	api    *remote.Client
	logger *zap.Logger

	mu      gosync.Mutex
	running bool
}

// Result summarizes one sync cycle.
type Result struct {
	// Skipped is true when another cycle was already running and this call
	// did nothing.
	Skipped bool

	// Pushed counts rows acknowledged by the server (creates, updates and
	// deletes).
	Pushed int

	// Discarded counts pending rows dropped locally because the server
	// reported them gone (404 on update or delete).
	Discarded int

	// Rejected counts rows the server refused with a validation error.
	// They stay pending locally; the errors are surfaced on the returned
	// error value.
	Rejected int

	// Pulled counts server rows merged into the local store.
	Pulled int

	// Deferred counts server rows skipped because the local copy still has
	// pending work.
	Deferred int
}

// NewEngine creates a sync engine over the given store and API client.
func NewEngine(s store.Store, api *remote.Client, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: s, api: api, logger: logger}
}

// Sync runs one full push/pull cycle.
//
// Network failures abort the cycle and leave every unacknowledged row
// pending; the next cycle picks them up again. Validation rejections and
// server-side 404s are per-row outcomes that never block the rest of the
// cycle.
func (e *Engine) Sync(ctx context.Context) (Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return Result{Skipped: true}, nil
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	var res Result
	started := time.Now()

	var rejections []error
	if err := e.pushAll(ctx, &res, &rejections); err != nil {
		return res, err
	}
	if err := e.pullAll(ctx, &res); err != nil {
		return res, err
	}

	e.logger.Info("sync cycle finished",
		zap.Int("pushed", res.Pushed),
		zap.Int("pulled", res.Pulled),
		zap.Int("discarded", res.Discarded),
		zap.Int("rejected", res.Rejected),
		zap.Int("deferred", res.Deferred),
		zap.Duration("elapsed", time.Since(started)),
	)

	if len(rejections) > 0 {
		return res, errors.Join(rejections...)
	}
	return res, nil
}

// pushItem is one pending row plus the API calls that push it. Which call
// runs depends on the row's sync state.
type pushItem struct {
	id     string
	status model.RowStatus
	create func(context.Context) error
	update func(context.Context) error
	remove func(context.Context) error
}

func (e *Engine) pushAll(ctx context.Context, res *Result, rejections *[]error) error {
	for _, entity := range model.PushOrder {
		items, err := e.pendingItems(ctx, entity)
		if err != nil {
			return fmt.Errorf("listing pending %s: %w", entity, err)
		}
		if err := e.pushEntity(ctx, entity, items, res, rejections); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pushEntity(ctx context.Context, entity model.EntityType, items []pushItem, res *Result, rejections *[]error) error {
	for _, item := range items {
		var (
			err      error
			isDelete bool
		)
		switch item.status.Sync {
		case model.SyncPendingCreate:
			err = item.create(ctx)
		case model.SyncPendingUpdate:
			err = item.update(ctx)
		case model.SyncPendingDelete:
			err = item.remove(ctx)
			isDelete = true
		default:
			continue
		}

		switch {
		case err == nil:
			if isDelete {
				if err := e.store.Remove(ctx, entity, item.id); err != nil {
					return fmt.Errorf("removing acked %s %s: %w", entity, item.id, err)
				}
			} else {
				if err := e.store.MarkSynced(ctx, entity, item.id); err != nil {
					return fmt.Errorf("acking %s %s: %w", entity, item.id, err)
				}
			}
			res.Pushed++

		case remote.IsNotFound(err):
			// A create can only 404 through a broken route or base URL;
			// discarding on it would destroy never-pushed work.
			if item.status.Sync == model.SyncPendingCreate {
				return fmt.Errorf("pushing %s %s: %w", entity, item.id, err)
			}
			// For updates and deletes the server no longer has the row;
			// the local copy is stale.
			if err := e.store.Remove(ctx, entity, item.id); err != nil {
				return fmt.Errorf("discarding %s %s: %w", entity, item.id, err)
			}
			res.Discarded++
			e.logger.Warn("discarded row deleted on server",
				zap.String("entity", string(entity)),
				zap.String("id", item.id),
			)

		case remote.IsValidation(err):
			// Keep the row pending so the local work is not lost; surface
			// the rejection to the caller.
			res.Rejected++
			*rejections = append(*rejections, err)
			e.logger.Warn("server rejected row",
				zap.String("entity", string(entity)),
				zap.String("id", item.id),
				zap.Error(err),
			)

		default:
			return fmt.Errorf("pushing %s %s: %w", entity, item.id, err)
		}
	}
	return nil
}

// pendingItems loads the pending rows of one entity type and binds each to
// its API calls.
func (e *Engine) pendingItems(ctx context.Context, entity model.EntityType) ([]pushItem, error) {
	var items []pushItem

	switch entity {
	case model.EntityGoal:
		goals, err := e.store.ListPendingGoals(ctx)
		if err != nil {
			return nil, err
		}
		for _, g := range goals {
			g := g
			payload := remote.GoalPayload(g)
			items = append(items, pushItem{
				id:     g.ID,
				status: g.Status,
				create: func(ctx context.Context) error { return e.api.CreateGoal(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateGoal(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteGoal(ctx, g.ID) },
			})
		}

	case model.EntityMilestone:
		milestones, err := e.store.ListPendingMilestones(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range milestones {
			m := m
			payload := remote.MilestonePayload(m)
			items = append(items, pushItem{
				id:     m.ID,
				status: m.Status,
				create: func(ctx context.Context) error { return e.api.CreateMilestone(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateMilestone(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteMilestone(ctx, m.ID) },
			})
		}

	case model.EntityStep:
		steps, err := e.store.ListPendingSteps(ctx)
		if err != nil {
			return nil, err
		}
		for _, st := range steps {
			st := st
			payload := remote.StepPayload(st)
			items = append(items, pushItem{
				id:     st.ID,
				status: st.Status,
				create: func(ctx context.Context) error { return e.api.CreateStep(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateStep(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteStep(ctx, st.ID) },
			})
		}

	case model.EntityTask:
		tasks, err := e.store.ListPendingTasks(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			t := t
			payload := remote.TaskPayload(t)
			items = append(items, pushItem{
				id:     t.ID,
				status: t.Status,
				create: func(ctx context.Context) error { return e.api.CreateTask(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateTask(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteTask(ctx, t.ID) },
			})
		}

	case model.EntityCalendarEvent:
		events, err := e.store.ListPendingCalendarEvents(ctx)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			ev := ev
			payload := remote.CalendarEventPayload(ev)
			items = append(items, pushItem{
				id:     ev.ID,
				status: ev.Status,
				create: func(ctx context.Context) error { return e.api.CreateCalendarEvent(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateCalendarEvent(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteCalendarEvent(ctx, ev.ID) },
			})
		}

	case model.EntityThread:
		threads, err := e.store.ListPendingThreads(ctx)
		if err != nil {
			return nil, err
		}
		for _, th := range threads {
			th := th
			payload := remote.ThreadPayload(th)
			items = append(items, pushItem{
				id:     th.ID,
				status: th.Status,
				create: func(ctx context.Context) error { return e.api.CreateThread(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateThread(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteThread(ctx, th.ID) },
			})
		}

	case model.EntityMessage:
		messages, err := e.store.ListPendingMessages(ctx)
		if err != nil {
			return nil, err
		}
		for _, msg := range messages {
			msg := msg
			payload := remote.MessagePayload(msg)
			items = append(items, pushItem{
				id:     msg.ID,
				status: msg.Status,
				create: func(ctx context.Context) error { return e.api.CreateMessage(ctx, payload) },
				update: func(ctx context.Context) error { return e.api.UpdateMessage(ctx, payload) },
				remove: func(ctx context.Context) error { return e.api.DeleteMessage(ctx, msg.ID) },
			})
		}

	default:
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}

	return items, nil
}

// pullRow is one fetched server row plus the merge that applies it locally.
type pullRow struct {
	id        string
	updatedAt time.Time
	apply     func(context.Context) (bool, error)
}

func (e *Engine) pullAll(ctx context.Context, res *Result) error {
	for _, entity := range model.PushOrder {
		if err := e.pullEntity(ctx, entity, res); err != nil {
			return err
		}
	}
	return nil
}

// pullEntity fetches one entity's delta since its watermark, merges each row
// under the pending-wins rule, and advances the watermark to the newest
// updated_at in the batch once the whole batch is applied.
func (e *Engine) pullEntity(ctx context.Context, entity model.EntityType, res *Result) error {
	since, err := e.store.GetWatermark(ctx, entity)
	if err != nil {
		return fmt.Errorf("reading %s watermark: %w", entity, err)
	}

	rows, err := e.fetchRows(ctx, entity, since)
	if err != nil {
		return fmt.Errorf("pulling %s: %w", entity, err)
	}
	if len(rows) == 0 {
		return nil
	}

	var newest time.Time
	for _, row := range rows {
		applied, err := row.apply(ctx)
		if err != nil {
			return fmt.Errorf("applying remote %s %s: %w", entity, row.id, err)
		}
		if applied {
			res.Pulled++
		} else {
			res.Deferred++
		}
		if row.updatedAt.After(newest) {
			newest = row.updatedAt
		}
	}

	if newest.After(since) {
		if err := e.store.SetWatermark(ctx, entity, newest); err != nil {
			return fmt.Errorf("advancing %s watermark: %w", entity, err)
		}
	}
	return nil
}

func (e *Engine) fetchRows(ctx context.Context, entity model.EntityType, since time.Time) ([]pullRow, error) {
	var rows []pullRow

	switch entity {
	case model.EntityGoal:
		goals, err := e.api.ListGoals(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, g := range goals {
			local := g.Model()
			rows = append(rows, pullRow{
				id:        g.ID,
				updatedAt: g.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteGoal(ctx, local)
				},
			})
		}

	case model.EntityMilestone:
		milestones, err := e.api.ListMilestones(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, m := range milestones {
			local := m.Model()
			rows = append(rows, pullRow{
				id:        m.ID,
				updatedAt: m.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteMilestone(ctx, local)
				},
			})
		}

	case model.EntityStep:
		steps, err := e.api.ListSteps(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, st := range steps {
			local := st.Model()
			rows = append(rows, pullRow{
				id:        st.ID,
				updatedAt: st.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteStep(ctx, local)
				},
			})
		}

	case model.EntityTask:
		tasks, err := e.api.ListTasks(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			local := t.Model()
			rows = append(rows, pullRow{
				id:        t.ID,
				updatedAt: t.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteTask(ctx, local)
				},
			})
		}

	case model.EntityCalendarEvent:
		events, err := e.api.ListCalendarEvents(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			local := ev.Model()
			rows = append(rows, pullRow{
				id:        ev.ID,
				updatedAt: ev.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteCalendarEvent(ctx, local)
				},
			})
		}

	case model.EntityThread:
		threads, err := e.api.ListThreads(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, th := range threads {
			local := th.Model()
			rows = append(rows, pullRow{
				id:        th.ID,
				updatedAt: th.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteThread(ctx, local)
				},
			})
		}

	case model.EntityMessage:
		messages, err := e.api.ListMessages(ctx, since)
		if err != nil {
			return nil, err
		}
		for _, msg := range messages {
			local := msg.Model()
			rows = append(rows, pullRow{
				id:        msg.ID,
				updatedAt: msg.UpdatedAt,
				apply: func(ctx context.Context) (bool, error) {
					return e.store.ApplyRemoteMessage(ctx, local)
				},
			})
		}

	default:
		return nil, fmt.Errorf("unknown entity type %q", entity)
	}

	return rows, nil
}
