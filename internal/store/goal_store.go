package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

const goalColumns = "id, title, description, target_date, sync_status, created_at, updated_at"

// CreateGoal inserts a locally created goal in pending_create state.
func (s *SQLiteStore) CreateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	if strings.TrimSpace(g.Title) == "" {
		return model.Goal{}, &ValidationError{Entity: "goal", Field: "title", Message: "must not be empty"}
	}
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	g.Status = model.PendingCreate("")

	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Description, g.TargetDate,
		string(g.Status.Sync), g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return model.Goal{}, fmt.Errorf("creating goal: %w", err)
	}
	return g, nil
}

// UpdateGoal applies a local edit to an existing goal.
func (s *SQLiteStore) UpdateGoal(ctx context.Context, g model.Goal) (model.Goal, error) {
	if strings.TrimSpace(g.Title) == "" {
		return model.Goal{}, &ValidationError{Entity: "goal", Field: "title", Message: "must not be empty"}
	}

	current, err := s.GetGoalByID(ctx, g.ID)
	if err != nil {
		return model.Goal{}, err
	}

	g.Status = current.Status.AfterLocalEdit("")
	g.CreatedAt = current.CreatedAt
	g.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE goals SET title = ?, description = ?, target_date = ?,
			sync_status = ?, updated_at = ?
		WHERE id = ?`,
		g.Title, g.Description, g.TargetDate,
		string(g.Status.Sync), g.UpdatedAt, g.ID,
	)
	if err != nil {
		return model.Goal{}, fmt.Errorf("updating goal %s: %w", g.ID, err)
	}
	return g, nil
}

// DeleteGoal records a local delete, discarding never-pushed rows outright.
func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	current, err := s.GetGoalByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityGoal, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE goals SET sync_status = ?, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting goal %s: %w", id, err)
	}
	return nil
}

// GetGoalByID retrieves a single goal by ID regardless of sync state.
func (s *SQLiteStore) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	var (
		g          model.Goal
		targetDate *time.Time
		syncStatus string
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ?", id,
	).Scan(&g.ID, &g.Title, &g.Description, &targetDate, &syncStatus, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting goal %s: %w", id, err)
	}
	g.TargetDate = targetDate
	g.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
	return &g, nil
}

// ListGoals returns all goals except those awaiting a delete acknowledgment.
func (s *SQLiteStore) ListGoals(ctx context.Context) ([]model.Goal, error) {
	return s.queryGoals(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncPendingDelete),
	)
}

// ListPendingGoals returns every goal with unpushed local work.
func (s *SQLiteStore) ListPendingGoals(ctx context.Context) ([]model.Goal, error) {
	return s.queryGoals(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) queryGoals(ctx context.Context, query string, args ...interface{}) ([]model.Goal, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		var (
			g          model.Goal
			targetDate *time.Time
			syncStatus string
		)
		err := rows.Scan(&g.ID, &g.Title, &g.Description, &targetDate, &syncStatus, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning goal row: %w", err)
		}
		g.TargetDate = targetDate
		g.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ApplyRemoteGoal merges a server goal under the pending-wins rule.
func (s *SQLiteStore) ApplyRemoteGoal(ctx context.Context, g model.Goal) (bool, error) {
	current, err := s.GetGoalByID(ctx, g.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, description = excluded.description,
			target_date = excluded.target_date, sync_status = excluded.sync_status,
			updated_at = excluded.updated_at`,
		g.ID, g.Title, g.Description, g.TargetDate,
		string(model.SyncSynced), g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote goal %s: %w", g.ID, err)
	}
	return true, nil
}

const milestoneColumns = "id, goal_id, title, sort_order, sync_status, created_at, updated_at"

// CreateMilestone inserts a locally created milestone in pending_create
// state. The referenced goal may itself still be pending_create; push
// ordering guarantees the goal reaches the server first.
func (s *SQLiteStore) CreateMilestone(ctx context.Context, m model.Milestone) (model.Milestone, error) {
	if strings.TrimSpace(m.Title) == "" {
		return model.Milestone{}, &ValidationError{Entity: "milestone", Field: "title", Message: "must not be empty"}
	}
	if m.GoalID == "" {
		return model.Milestone{}, &ValidationError{Entity: "milestone", Field: "goal_id", Message: "must not be empty"}
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.Status = model.PendingCreate("")

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO milestones (`+milestoneColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.GoalID, m.Title, m.SortOrder,
		string(m.Status.Sync), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return model.Milestone{}, fmt.Errorf("creating milestone: %w", err)
	}
	return m, nil
}

// UpdateMilestone applies a local edit to an existing milestone.
func (s *SQLiteStore) UpdateMilestone(ctx context.Context, m model.Milestone) (model.Milestone, error) {
	if strings.TrimSpace(m.Title) == "" {
		return model.Milestone{}, &ValidationError{Entity: "milestone", Field: "title", Message: "must not be empty"}
	}

	current, err := s.getMilestoneByID(ctx, m.ID)
	if err != nil {
		return model.Milestone{}, err
	}

	m.GoalID = current.GoalID
	m.Status = current.Status.AfterLocalEdit("")
	m.CreatedAt = current.CreatedAt
	m.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE milestones SET title = ?, sort_order = ?, sync_status = ?, updated_at = ?
		WHERE id = ?`,
		m.Title, m.SortOrder, string(m.Status.Sync), m.UpdatedAt, m.ID,
	)
	if err != nil {
		return model.Milestone{}, fmt.Errorf("updating milestone %s: %w", m.ID, err)
	}
	return m, nil
}

// DeleteMilestone records a local delete, discarding never-pushed rows.
func (s *SQLiteStore) DeleteMilestone(ctx context.Context, id string) error {
	current, err := s.getMilestoneByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityMilestone, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE milestones SET sync_status = ?, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting milestone %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) getMilestoneByID(ctx context.Context, id string) (*model.Milestone, error) {
	var (
		m          model.Milestone
		syncStatus string
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT "+milestoneColumns+" FROM milestones WHERE id = ?", id,
	).Scan(&m.ID, &m.GoalID, &m.Title, &m.SortOrder, &syncStatus, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("milestone %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting milestone %s: %w", id, err)
	}
	m.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
	return &m, nil
}

// ListMilestones returns a goal's milestones ordered for display,
// excluding pending deletes.
func (s *SQLiteStore) ListMilestones(ctx context.Context, goalID string) ([]model.Milestone, error) {
	return s.queryMilestones(ctx,
		"SELECT "+milestoneColumns+" FROM milestones WHERE goal_id = ? AND sync_status != ? ORDER BY sort_order, id",
		goalID, string(model.SyncPendingDelete),
	)
}

// ListPendingMilestones returns every milestone with unpushed local work.
func (s *SQLiteStore) ListPendingMilestones(ctx context.Context) ([]model.Milestone, error) {
	return s.queryMilestones(ctx,
		"SELECT "+milestoneColumns+" FROM milestones WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) queryMilestones(ctx context.Context, query string, args ...interface{}) ([]model.Milestone, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying milestones: %w", err)
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var (
			m          model.Milestone
			syncStatus string
		)
		err := rows.Scan(&m.ID, &m.GoalID, &m.Title, &m.SortOrder, &syncStatus, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning milestone row: %w", err)
		}
		m.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// ApplyRemoteMilestone merges a server milestone under the pending-wins rule.
func (s *SQLiteStore) ApplyRemoteMilestone(ctx context.Context, m model.Milestone) (bool, error) {
	current, err := s.getMilestoneByID(ctx, m.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO milestones (`+milestoneColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			goal_id = excluded.goal_id, title = excluded.title,
			sort_order = excluded.sort_order, sync_status = excluded.sync_status,
			updated_at = excluded.updated_at`,
		m.ID, m.GoalID, m.Title, m.SortOrder,
		string(model.SyncSynced), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote milestone %s: %w", m.ID, err)
	}
	return true, nil
}

const stepColumns = "id, milestone_id, title, completed, sort_order, sync_status, created_at, updated_at"

// CreateStep inserts a locally created step in pending_create state.
func (s *SQLiteStore) CreateStep(ctx context.Context, st model.Step) (model.Step, error) {
	if strings.TrimSpace(st.Title) == "" {
		return model.Step{}, &ValidationError{Entity: "step", Field: "title", Message: "must not be empty"}
	}
	if st.MilestoneID == "" {
		return model.Step{}, &ValidationError{Entity: "step", Field: "milestone_id", Message: "must not be empty"}
	}
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	st.Status = model.PendingCreate("")

	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.MilestoneID, st.Title, boolToInt(st.Completed), st.SortOrder,
		string(st.Status.Sync), st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return model.Step{}, fmt.Errorf("creating step: %w", err)
	}
	return st, nil
}

// UpdateStep applies a local edit to an existing step.
func (s *SQLiteStore) UpdateStep(ctx context.Context, st model.Step) (model.Step, error) {
	if strings.TrimSpace(st.Title) == "" {
		return model.Step{}, &ValidationError{Entity: "step", Field: "title", Message: "must not be empty"}
	}

	current, err := s.getStepByID(ctx, st.ID)
	if err != nil {
		return model.Step{}, err
	}

	st.MilestoneID = current.MilestoneID
	st.Status = current.Status.AfterLocalEdit("")
	st.CreatedAt = current.CreatedAt
	st.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE steps SET title = ?, completed = ?, sort_order = ?, sync_status = ?, updated_at = ?
		WHERE id = ?`,
		st.Title, boolToInt(st.Completed), st.SortOrder,
		string(st.Status.Sync), st.UpdatedAt, st.ID,
	)
	if err != nil {
		return model.Step{}, fmt.Errorf("updating step %s: %w", st.ID, err)
	}
	return st, nil
}

// DeleteStep records a local delete, discarding never-pushed rows.
func (s *SQLiteStore) DeleteStep(ctx context.Context, id string) error {
	current, err := s.getStepByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status.Sync == model.SyncPendingCreate {
		return s.Remove(ctx, model.EntityStep, id)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE steps SET sync_status = ?, updated_at = ? WHERE id = ?",
		string(model.SyncPendingDelete), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting step %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) getStepByID(ctx context.Context, id string) (*model.Step, error) {
	var (
		st           model.Step
		completedInt int
		syncStatus   string
	)
	err := s.db.QueryRowxContext(ctx,
		"SELECT "+stepColumns+" FROM steps WHERE id = ?", id,
	).Scan(&st.ID, &st.MilestoneID, &st.Title, &completedInt, &st.SortOrder, &syncStatus, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("step %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting step %s: %w", id, err)
	}
	st.Completed = completedInt != 0
	st.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
	return &st, nil
}

// ListSteps returns a milestone's steps ordered for display, excluding
// pending deletes.
func (s *SQLiteStore) ListSteps(ctx context.Context, milestoneID string) ([]model.Step, error) {
	return s.querySteps(ctx,
		"SELECT "+stepColumns+" FROM steps WHERE milestone_id = ? AND sync_status != ? ORDER BY sort_order, id",
		milestoneID, string(model.SyncPendingDelete),
	)
}

// ListPendingSteps returns every step with unpushed local work.
func (s *SQLiteStore) ListPendingSteps(ctx context.Context) ([]model.Step, error) {
	return s.querySteps(ctx,
		"SELECT "+stepColumns+" FROM steps WHERE sync_status != ? ORDER BY created_at, id",
		string(model.SyncSynced),
	)
}

func (s *SQLiteStore) querySteps(ctx context.Context, query string, args ...interface{}) ([]model.Step, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying steps: %w", err)
	}
	defer rows.Close()

	var steps []model.Step
	for rows.Next() {
		var (
			st           model.Step
			completedInt int
			syncStatus   string
		)
		err := rows.Scan(&st.ID, &st.MilestoneID, &st.Title, &completedInt, &st.SortOrder, &syncStatus, &st.CreatedAt, &st.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning step row: %w", err)
		}
		st.Completed = completedInt != 0
		st.Status = model.RowStatus{Sync: model.SyncState(syncStatus)}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// ApplyRemoteStep merges a server step under the pending-wins rule.
func (s *SQLiteStore) ApplyRemoteStep(ctx context.Context, st model.Step) (bool, error) {
	current, err := s.getStepByID(ctx, st.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if current != nil && current.Status.IsPending() {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			milestone_id = excluded.milestone_id, title = excluded.title,
			completed = excluded.completed, sort_order = excluded.sort_order,
			sync_status = excluded.sync_status, updated_at = excluded.updated_at`,
		st.ID, st.MilestoneID, st.Title, boolToInt(st.Completed), st.SortOrder,
		string(model.SyncSynced), st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("applying remote step %s: %w", st.ID, err)
	}
	return true, nil
}
