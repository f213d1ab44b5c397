package store

import (
	"context"
	"time"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

// Store defines the local persistence boundary: durable row storage with
// transactional writes for every mirrored entity, the per-entity pull
// watermarks, and the focus-task transaction.
//
// Local mutations (Create/Update/Delete) apply the sync status machine.
// Reads used for business logic exclude pending_delete rows. ApplyRemote*
// merges a server row under the pending-wins rule. MarkSynced and Remove
// are the push acknowledgment hooks.
type Store interface {
	// === Tasks ===

	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, t model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListPendingTasks(ctx context.Context) ([]model.Task, error)
	ApplyRemoteTask(ctx context.Context, t model.Task) (bool, error)
	SetFocusTask(ctx context.Context, previousID, nextID string) error

	// === Goals ===

	CreateGoal(ctx context.Context, g model.Goal) (model.Goal, error)
	UpdateGoal(ctx context.Context, g model.Goal) (model.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context) ([]model.Goal, error)
	ListPendingGoals(ctx context.Context) ([]model.Goal, error)
	ApplyRemoteGoal(ctx context.Context, g model.Goal) (bool, error)

	// === Milestones ===

	CreateMilestone(ctx context.Context, m model.Milestone) (model.Milestone, error)
	UpdateMilestone(ctx context.Context, m model.Milestone) (model.Milestone, error)
	DeleteMilestone(ctx context.Context, id string) error
	ListMilestones(ctx context.Context, goalID string) ([]model.Milestone, error)
	ListPendingMilestones(ctx context.Context) ([]model.Milestone, error)
	ApplyRemoteMilestone(ctx context.Context, m model.Milestone) (bool, error)

	// === Steps ===

	CreateStep(ctx context.Context, st model.Step) (model.Step, error)
	UpdateStep(ctx context.Context, st model.Step) (model.Step, error)
	DeleteStep(ctx context.Context, id string) error
	ListSteps(ctx context.Context, milestoneID string) ([]model.Step, error)
	ListPendingSteps(ctx context.Context) ([]model.Step, error)
	ApplyRemoteStep(ctx context.Context, st model.Step) (bool, error)

	// === Calendar events ===

	CreateCalendarEvent(ctx context.Context, ev model.CalendarEvent) (model.CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, ev model.CalendarEvent) (model.CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, id string) error
	ListCalendarEvents(ctx context.Context) ([]model.CalendarEvent, error)
	ListPendingCalendarEvents(ctx context.Context) ([]model.CalendarEvent, error)
	ApplyRemoteCalendarEvent(ctx context.Context, ev model.CalendarEvent) (bool, error)

	// === Conversations ===

	CreateThread(ctx context.Context, th model.ConversationThread) (model.ConversationThread, error)
	DeleteThread(ctx context.Context, id string) error
	ListThreads(ctx context.Context) ([]model.ConversationThread, error)
	ListPendingThreads(ctx context.Context) ([]model.ConversationThread, error)
	ApplyRemoteThread(ctx context.Context, th model.ConversationThread) (bool, error)

	CreateMessage(ctx context.Context, msg model.ConversationMessage) (model.ConversationMessage, error)
	DeleteMessage(ctx context.Context, id string) error
	ListMessages(ctx context.Context, threadID string) ([]model.ConversationMessage, error)
	ListPendingMessages(ctx context.Context) ([]model.ConversationMessage, error)
	ApplyRemoteMessage(ctx context.Context, msg model.ConversationMessage) (bool, error)

	// === Push acknowledgments ===

	MarkSynced(ctx context.Context, entity model.EntityType, id string) error
	Remove(ctx context.Context, entity model.EntityType, id string) error

	// === Pull watermarks ===

	GetWatermark(ctx context.Context, entity model.EntityType) (time.Time, error)
	SetWatermark(ctx context.Context, entity model.EntityType, pulledAt time.Time) error
}
