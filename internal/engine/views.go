package engine

import (
	"sort"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
)

// Tasks returns the collection ordered for display under the given sort
// mode. The result is a deep copy; deriving a view never mutates
// canonical order, which is what keeps manual reordering from being
// lost when the user switches modes.
func (l *List) Tasks(mode domain.SortMode) []*domain.Task {
	l.mu.RLock()
	view := domain.CloneTasks(l.tasks)
	l.mu.RUnlock()

	switch mode {
	case domain.SortPriority:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Priority.Before(view[j].Priority)
		})
	case domain.SortDueDate:
		// Undated tasks sort after all dated tasks; ties keep
		// canonical relative order (stable sort).
		sort.SliceStable(view, func(i, j int) bool {
			di, dj := view[i].DueDate, view[j].DueDate
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return di.Before(*dj)
			}
		})
	}
	return view
}

// Stats summarizes completion counts for the CLI footer.
type Stats struct {
	Tasks             int
	CompletedTasks    int
	Subtasks          int
	CompletedSubtasks int
}

// Stats counts tasks and subtasks by completion state.
func (l *List) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var s Stats
	for _, t := range l.tasks {
		s.Tasks++
		if t.Completed {
			s.CompletedTasks++
		}
		for _, sub := range t.Subtasks {
			s.Subtasks++
			if sub.Completed {
				s.CompletedSubtasks++
			}
		}
	}
	return s
}
