package remote

import (
	"context"
	"time"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

// Wire payloads mirror the server's JSON schema. A task's "status" on the
// wire is its lifecycle only; the local sync-state tag never leaves the
// device.

// Task is the wire form of a task row.
type Task struct {
	ID                       string     `json:"id"`
	GoalID                   *string    `json:"goal_id,omitempty"`
	Title                    string     `json:"title"`
	Description              string     `json:"description,omitempty"`
	Priority                 string     `json:"priority,omitempty"`
	DueDate                  *time.Time `json:"due_date,omitempty"`
	Location                 *string    `json:"location,omitempty"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes,omitempty"`
	IsTodayFocus             bool       `json:"is_today_focus"`
	Status                   string     `json:"status,omitempty"`
	CompletedAt              *time.Time `json:"completed_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// TaskPayload converts a local task to its wire form.
func TaskPayload(t model.Task) Task {
	return Task{
		ID:                       t.ID,
		GoalID:                   t.GoalID,
		Title:                    t.Title,
		Description:              t.Description,
		Priority:                 string(t.Priority),
		DueDate:                  t.DueDate,
		Location:                 t.Location,
		EstimatedDurationMinutes: t.EstimatedDurationMinutes,
		IsTodayFocus:             t.IsTodayFocus,
		Status:                   string(t.Status.Lifecycle),
		CompletedAt:              t.CompletedAt,
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
	}
}

// Model converts a pulled task to its local form, marked synced.
func (t Task) Model() model.Task {
	return model.Task{
		ID:                       t.ID,
		GoalID:                   t.GoalID,
		Title:                    t.Title,
		Description:              t.Description,
		Priority:                 model.Priority(t.Priority),
		DueDate:                  t.DueDate,
		Location:                 t.Location,
		EstimatedDurationMinutes: t.EstimatedDurationMinutes,
		IsTodayFocus:             t.IsTodayFocus,
		CompletedAt:              t.CompletedAt,
		Status:                   model.Synced(model.Lifecycle(t.Status)),
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
	}
}

// Goal is the wire form of a goal row.
type Goal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// GoalPayload converts a local goal to its wire form.
func GoalPayload(g model.Goal) Goal {
	return Goal{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		TargetDate:  g.TargetDate,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// Model converts a pulled goal to its local form, marked synced.
func (g Goal) Model() model.Goal {
	return model.Goal{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		TargetDate:  g.TargetDate,
		Status:      model.Synced(""),
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

// Milestone is the wire form of a milestone row.
type Milestone struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goal_id"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MilestonePayload converts a local milestone to its wire form.
func MilestonePayload(m model.Milestone) Milestone {
	return Milestone{
		ID:        m.ID,
		GoalID:    m.GoalID,
		Title:     m.Title,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Model converts a pulled milestone to its local form, marked synced.
func (m Milestone) Model() model.Milestone {
	return model.Milestone{
		ID:        m.ID,
		GoalID:    m.GoalID,
		Title:     m.Title,
		SortOrder: m.SortOrder,
		Status:    model.Synced(""),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// Step is the wire form of a step row.
type Step struct {
	ID          string    `json:"id"`
	MilestoneID string    `json:"milestone_id"`
	Title       string    `json:"title"`
	Completed   bool      `json:"completed"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StepPayload converts a local step to its wire form.
func StepPayload(st model.Step) Step {
	return Step{
		ID:          st.ID,
		MilestoneID: st.MilestoneID,
		Title:       st.Title,
		Completed:   st.Completed,
		SortOrder:   st.SortOrder,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}

// Model converts a pulled step to its local form, marked synced.
func (st Step) Model() model.Step {
	return model.Step{
		ID:          st.ID,
		MilestoneID: st.MilestoneID,
		Title:       st.Title,
		Completed:   st.Completed,
		SortOrder:   st.SortOrder,
		Status:      model.Synced(""),
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}

// CalendarEvent is the wire form of a calendar event row.
type CalendarEvent struct {
	ID          string    `json:"id"`
	TaskID      *string   `json:"task_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CalendarEventPayload converts a local event to its wire form.
func CalendarEventPayload(ev model.CalendarEvent) CalendarEvent {
	return CalendarEvent{
		ID:          ev.ID,
		TaskID:      ev.TaskID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		StartAt:     ev.StartAt,
		EndAt:       ev.EndAt,
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

// Model converts a pulled event to its local form, marked synced.
func (ev CalendarEvent) Model() model.CalendarEvent {
	return model.CalendarEvent{
		ID:          ev.ID,
		TaskID:      ev.TaskID,
		Title:       ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		StartAt:     ev.StartAt,
		EndAt:       ev.EndAt,
		Status:      model.Synced(""),
		CreatedAt:   ev.CreatedAt,
		UpdatedAt:   ev.UpdatedAt,
	}
}

// Thread is the wire form of a conversation thread row.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThreadPayload converts a local thread to its wire form.
func ThreadPayload(th model.ConversationThread) Thread {
	return Thread{
		ID:        th.ID,
		Title:     th.Title,
		CreatedAt: th.CreatedAt,
		UpdatedAt: th.UpdatedAt,
	}
}

// Model converts a pulled thread to its local form, marked synced.
func (th Thread) Model() model.ConversationThread {
	return model.ConversationThread{
		ID:        th.ID,
		Title:     th.Title,
		Status:    model.Synced(""),
		CreatedAt: th.CreatedAt,
		UpdatedAt: th.UpdatedAt,
	}
}

// Message is the wire form of a conversation message row.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessagePayload converts a local message to its wire form.
func MessagePayload(msg model.ConversationMessage) Message {
	return Message{
		ID:        msg.ID,
		ThreadID:  msg.ThreadID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}

// Model converts a pulled message to its local form, marked synced.
func (msg Message) Model() model.ConversationMessage {
	return model.ConversationMessage{
		ID:        msg.ID,
		ThreadID:  msg.ThreadID,
		Role:      msg.Role,
		Content:   msg.Content,
		Status:    model.Synced(""),
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}

// === Task endpoints ===

func (c *Client) CreateTask(ctx context.Context, t Task) error {
	return c.create(ctx, model.EntityTask, t.ID, t)
}

func (c *Client) UpdateTask(ctx context.Context, t Task) error {
	return c.update(ctx, model.EntityTask, t.ID, t)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityTask, id)
}

func (c *Client) ListTasks(ctx context.Context, since time.Time) ([]Task, error) {
	var out []Task
	if err := c.list(ctx, model.EntityTask, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// === Goal endpoints ===

func (c *Client) CreateGoal(ctx context.Context, g Goal) error {
	return c.create(ctx, model.EntityGoal, g.ID, g)
}

func (c *Client) UpdateGoal(ctx context.Context, g Goal) error {
	return c.update(ctx, model.EntityGoal, g.ID, g)
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityGoal, id)
}

func (c *Client) ListGoals(ctx context.Context, since time.Time) ([]Goal, error) {
	var out []Goal
	if err := c.list(ctx, model.EntityGoal, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// === Milestone endpoints ===

func (c *Client) CreateMilestone(ctx context.Context, m Milestone) error {
	return c.create(ctx, model.EntityMilestone, m.ID, m)
}

func (c *Client) UpdateMilestone(ctx context.Context, m Milestone) error {
	return c.update(ctx, model.EntityMilestone, m.ID, m)
}

func (c *Client) DeleteMilestone(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityMilestone, id)
}

func (c *Client) ListMilestones(ctx context.Context, since time.Time) ([]Milestone, error) {
	var out []Milestone
	if err := c.list(ctx, model.EntityMilestone, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// === Step endpoints ===

func (c *Client) CreateStep(ctx context.Context, st Step) error {
	return c.create(ctx, model.EntityStep, st.ID, st)
}

func (c *Client) UpdateStep(ctx context.Context, st Step) error {
	return c.update(ctx, model.EntityStep, st.ID, st)
}

func (c *Client) DeleteStep(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityStep, id)
}

func (c *Client) ListSteps(ctx context.Context, since time.Time) ([]Step, error) {
	var out []Step
	if err := c.list(ctx, model.EntityStep, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// === Calendar event endpoints ===

func (c *Client) CreateCalendarEvent(ctx context.Context, ev CalendarEvent) error {
	return c.create(ctx, model.EntityCalendarEvent, ev.ID, ev)
}

func (c *Client) UpdateCalendarEvent(ctx context.Context, ev CalendarEvent) error {
	return c.update(ctx, model.EntityCalendarEvent, ev.ID, ev)
}

func (c *Client) DeleteCalendarEvent(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityCalendarEvent, id)
}

func (c *Client) ListCalendarEvents(ctx context.Context, since time.Time) ([]CalendarEvent, error) {
	var out []CalendarEvent
	if err := c.list(ctx, model.EntityCalendarEvent, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// === Conversation endpoints ===

func (c *Client) CreateThread(ctx context.Context, th Thread) error {
	return c.create(ctx, model.EntityThread, th.ID, th)
}

func (c *Client) UpdateThread(ctx context.Context, th Thread) error {
	return c.update(ctx, model.EntityThread, th.ID, th)
}

func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityThread, id)
}

func (c *Client) ListThreads(ctx context.Context, since time.Time) ([]Thread, error) {
	var out []Thread
	if err := c.list(ctx, model.EntityThread, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateMessage(ctx context.Context, msg Message) error {
	return c.create(ctx, model.EntityMessage, msg.ID, msg)
}

func (c *Client) UpdateMessage(ctx context.Context, msg Message) error {
	return c.update(ctx, model.EntityMessage, msg.ID, msg)
}

func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.del(ctx, model.EntityMessage, id)
}

func (c *Client) ListMessages(ctx context.Context, since time.Time) ([]Message, error) {
	var out []Message
	if err := c.list(ctx, model.EntityMessage, since, &out); err != nil {
		return nil, err
	}
	return out, nil
}
