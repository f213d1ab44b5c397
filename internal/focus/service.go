package focus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bMacroni/MindClear-sub005/internal/model"
	"github.com/bMacroni/MindClear-sub005/internal/store"
)

// Service wires the pure selector to the store's focus transaction.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates a momentum mode service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger}
}

// SelectNext picks and sets the next focus task in one go: the current
// focus task (if any) is unset, the winner is flagged, and the winner's
// estimated duration is raised to the minimum if it was missing or too
// small. excludeIDs holds tasks the user skipped this session; nil means
// none. The swap is a single transaction so the single-focus invariant
// holds even if the process dies mid-way.
func (s *Service) SelectNext(ctx context.Context, excludeIDs map[string]bool, pref model.TravelPreference) (model.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return model.Task{}, fmt.Errorf("listing tasks: %w", err)
	}

	var currentID string
	for _, t := range tasks {
		if t.IsTodayFocus {
			currentID = t.ID
			break
		}
	}

	next, err := PickNext(tasks, currentID, excludeIDs, pref)
	if err != nil {
		return model.Task{}, err
	}

	if err := s.store.SetFocusTask(ctx, currentID, next.ID); err != nil {
		return model.Task{}, fmt.Errorf("setting focus task: %w", err)
	}

	s.logger.Info("focus task selected",
		zap.String("task_id", next.ID),
		zap.String("previous_id", currentID),
		zap.String("travel_preference", string(pref)),
	)

	updated, err := s.store.GetTaskByID(ctx, next.ID)
	if err != nil {
		return model.Task{}, fmt.Errorf("reloading focus task: %w", err)
	}
	return *updated, nil
}
