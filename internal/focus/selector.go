package focus

import (
	"errors"
	"sort"

	"github.com/bMacroni/MindClear-sub005/internal/model"
)

// NoEligibleTaskError is returned when no task survives the eligibility
// filter. Considered reports how many tasks were looked at before every one
// was ruled out.
type NoEligibleTaskError struct {
	Considered int
}

func (e *NoEligibleTaskError) Error() string {
	return "no eligible task for momentum mode"
}

// IsNoEligibleTask reports whether err (or any error in its chain) is a
// NoEligibleTaskError.
func IsNoEligibleTask(err error) bool {
	var ne *NoEligibleTaskError
	return errors.As(err, &ne)
}

// PickNext selects the next focus task from tasks. It is a pure function:
// the same inputs always pick the same task.
//
// Eligibility rules out completed tasks, rows with a pending local delete,
// any id in excludeIDs (tasks the user skipped this session; nil means no
// skips), and the task identified by currentID so that asking for the next
// task never hands back the current one. With a home_only preference, tasks
// tied to a place are preferred out but not banned: if every eligible task
// has a location the preference is waived rather than returning nothing.
//
// Among eligible tasks the winner is picked by priority (high first), then
// due date (soonest first, tasks without one last), then id as the final
// deterministic tie-break.
func PickNext(tasks []model.Task, currentID string, excludeIDs map[string]bool, pref model.TravelPreference) (model.Task, error) {
	eligible := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == currentID || excludeIDs[t.ID] {
			continue
		}
		if t.Status.Lifecycle == model.LifecycleCompleted {
			continue
		}
		if t.Status.Sync == model.SyncPendingDelete {
			continue
		}
		eligible = append(eligible, t)
	}

	if len(eligible) == 0 {
		return model.Task{}, &NoEligibleTaskError{Considered: len(tasks)}
	}

	if pref == model.TravelHomeOnly {
		homebound := make([]model.Task, 0, len(eligible))
		for _, t := range eligible {
			if !t.HasLocation() {
				homebound = append(homebound, t)
			}
		}
		if len(homebound) > 0 {
			eligible = homebound
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if ar, br := a.Priority.Rank(), b.Priority.Rank(); ar != br {
			return ar > br
		}
		switch {
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID < b.ID
	})

	return eligible[0], nil
}
