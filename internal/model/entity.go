package model

import "time"

// EntityType names one of the locally mirrored tables. The values double as
// the remote API resource names.
type EntityType string

const (
	EntityGoal          EntityType = "goals"
	EntityMilestone     EntityType = "milestones"
	EntityStep          EntityType = "steps"
	EntityTask          EntityType = "tasks"
	EntityCalendarEvent EntityType = "calendar_events"
	EntityThread        EntityType = "conversation_threads"
	EntityMessage       EntityType = "conversation_messages"
)

// PushOrder lists entity types so that every parent is pushed before any
// child that references it: the server rejects a milestone whose goal id it
// has never seen.
var PushOrder = []EntityType{
	EntityGoal,
	EntityMilestone,
	EntityStep,
	EntityTask,
	EntityCalendarEvent,
	EntityThread,
	EntityMessage,
}

// Priority levels for tasks.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank returns the sort weight of a priority; higher sorts first. Unknown
// values rank below low so malformed rows never outrank real ones.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// TravelPreference controls which tasks Momentum Mode may pick.
type TravelPreference string

const (
	TravelAllowTravel TravelPreference = "allow_travel"
	TravelHomeOnly    TravelPreference = "home_only"
)

// MinEstimatedDurationMinutes is the floor applied to a task's estimated
// duration whenever it is set as the focus task.
const MinEstimatedDurationMinutes = 30

// Task is a locally mirrored task row.
type Task struct {
	ID                       string     `json:"id" db:"id"`
	GoalID                   *string    `json:"goal_id,omitempty" db:"goal_id"`
	Title                    string     `json:"title" db:"title"`
	Description              string     `json:"description" db:"description"`
	Priority                 Priority   `json:"priority" db:"priority"`
	DueDate                  *time.Time `json:"due_date,omitempty" db:"due_date"`
	Location                 *string    `json:"location,omitempty" db:"location"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes" db:"estimated_duration_minutes"`
	IsTodayFocus             bool       `json:"is_today_focus" db:"is_today_focus"`
	CompletedAt              *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status                   RowStatus  `json:"-" db:"-"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// HasLocation reports whether the task is tied to a place. Tasks with a nil
// or empty location can be done from home.
func (t Task) HasLocation() bool {
	return t.Location != nil && *t.Location != ""
}

// Goal is a locally mirrored goal row.
type Goal struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	TargetDate  *time.Time `json:"target_date,omitempty" db:"target_date"`
	Status      RowStatus  `json:"-" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Milestone is a locally mirrored milestone row belonging to a goal.
type Milestone struct {
	ID        string    `json:"id" db:"id"`
	GoalID    string    `json:"goal_id" db:"goal_id"`
	Title     string    `json:"title" db:"title"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	Status    RowStatus `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Step is a locally mirrored step row belonging to a milestone.
type Step struct {
	ID          string    `json:"id" db:"id"`
	MilestoneID string    `json:"milestone_id" db:"milestone_id"`
	Title       string    `json:"title" db:"title"`
	Completed   bool      `json:"completed" db:"completed"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	Status      RowStatus `json:"-" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CalendarEvent is a locally mirrored calendar event, optionally linked to
// the task it schedules.
type CalendarEvent struct {
	ID          string     `json:"id" db:"id"`
	TaskID      *string    `json:"task_id,omitempty" db:"task_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Location    *string    `json:"location,omitempty" db:"location"`
	StartAt     time.Time  `json:"start_at" db:"start_at"`
	EndAt       time.Time  `json:"end_at" db:"end_at"`
	Status      RowStatus  `json:"-" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ConversationThread is a locally mirrored chat thread.
type ConversationThread struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Status    RowStatus `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConversationMessage is a locally mirrored chat message within a thread.
type ConversationMessage struct {
	ID        string    `json:"id" db:"id"`
	ThreadID  string    `json:"thread_id" db:"thread_id"`
	Role      string    `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	Status    RowStatus `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
