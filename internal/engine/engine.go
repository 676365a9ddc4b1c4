// Package engine owns the canonical ordered task collection and every
// structural mutation on it. Each mutation is flushed to the backing
// store before it becomes visible; a failed flush leaves both memory
// and disk as they were.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
)

// List is the task list engine. All operations are safe for concurrent
// use; mutations serialize on the internal lock so there is never more
// than one writer against the backing store.
type List struct {
	mu     sync.RWMutex
	store  domain.Store
	tasks  []*domain.Task
	logger *zap.Logger
}

// Open loads the canonical collection from the store. On a corrupt
// store it returns the error unchanged so the caller can decide whether
// to abort or start empty via New.
func Open(store domain.Store, logger *zap.Logger) (*List, error) {
	tasks, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load task store: %w", err)
	}
	return New(store, tasks, logger), nil
}

// New builds an engine around an already-loaded collection. Used
// directly when recovering from a corrupt store with an empty list.
func New(store domain.Store, tasks []*domain.Task, logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &List{
		store:  store,
		tasks:  tasks,
		logger: logger,
	}
}

// errNoop signals that a mutation turned out to change nothing; the
// engine skips the flush and reports success.
var errNoop = errors.New("noop")

// mutate runs fn against a deep copy of the canonical collection,
// flushes the result, and only then swaps it in. fn returns the new
// collection (it may grow or shrink it).
func (l *List) mutate(op string, fn func(tasks []*domain.Task) ([]*domain.Task, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := fn(domain.CloneTasks(l.tasks))
	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := l.store.Save(next); err != nil {
		l.logger.Error("flush failed, mutation discarded",
			zap.String("op", op),
			zap.Error(err))
		return fmt.Errorf("save task store: %w", err)
	}
	l.tasks = next
	l.logger.Debug("mutation flushed", zap.String("op", op), zap.Int("tasks", len(next)))
	return nil
}

// AddTask validates the title, assigns a fresh ID, and appends the new
// task to the end of canonical order.
func (l *List) AddTask(title string, priority domain.Priority, due *domain.Date) (*domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !priority.Valid() {
		return nil, &domain.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", string(priority))}
	}
	if due != nil && due.IsZero() {
		due = nil
	}

	task := &domain.Task{
		ID:       uuid.NewString(),
		Title:    title,
		Priority: priority,
		Subtasks: []*domain.Subtask{},
	}
	if due != nil {
		d := *due
		task.DueDate = &d
	}

	err := l.mutate("add_task", func(tasks []*domain.Task) ([]*domain.Task, error) {
		return append(tasks, task.Clone()), nil
	})
	if err != nil {
		return nil, err
	}
	return task.Clone(), nil
}

// TaskUpdate is a partial edit. Nil fields are left unchanged;
// ClearDueDate removes an existing due date.
type TaskUpdate struct {
	Title        *string
	Priority     *domain.Priority
	DueDate      *domain.Date
	ClearDueDate bool
}

// EditTask updates only the supplied fields of an existing task. Its
// canonical position is unchanged.
func (l *List) EditTask(id string, upd TaskUpdate) error {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return &domain.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", string(*upd.Priority))}
	}

	return l.mutate("edit_task", func(tasks []*domain.Task) ([]*domain.Task, error) {
		t := findTask(tasks, id)
		if t == nil {
			return nil, &domain.NotFoundError{Kind: "task", ID: id}
		}
		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Priority != nil {
			t.Priority = *upd.Priority
		}
		if upd.ClearDueDate {
			t.DueDate = nil
		} else if upd.DueDate != nil {
			d := *upd.DueDate
			t.DueDate = &d
		}
		return tasks, nil
	})
}

// ToggleComplete flips a task's completed flag. Subtask completion
// states are independent and untouched.
func (l *List) ToggleComplete(id string) error {
	return l.mutate("toggle_complete", func(tasks []*domain.Task) ([]*domain.Task, error) {
		t := findTask(tasks, id)
		if t == nil {
			return nil, &domain.NotFoundError{Kind: "task", ID: id}
		}
		t.Completed = !t.Completed
		return tasks, nil
	})
}

// DeleteTask removes a task and its subtasks from canonical order.
func (l *List) DeleteTask(id string) error {
	return l.mutate("delete_task", func(tasks []*domain.Task) ([]*domain.Task, error) {
		for i, t := range tasks {
			if t.ID == id {
				return append(tasks[:i], tasks[i+1:]...), nil
			}
		}
		return nil, &domain.NotFoundError{Kind: "task", ID: id}
	})
}

// AddSubtask appends a subtask to the parent's sequence.
func (l *List) AddSubtask(parentID, title string) (*domain.Subtask, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	sub := &domain.Subtask{
		ID:    uuid.NewString(),
		Title: title,
	}

	err := l.mutate("add_subtask", func(tasks []*domain.Task) ([]*domain.Task, error) {
		t := findTask(tasks, parentID)
		if t == nil {
			return nil, &domain.NotFoundError{Kind: "task", ID: parentID}
		}
		sc := *sub
		t.Subtasks = append(t.Subtasks, &sc)
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	out := *sub
	return &out, nil
}

// ToggleSubtask flips a subtask's completed flag. The parent's own
// completion state is untouched.
func (l *List) ToggleSubtask(parentID, subID string) error {
	return l.mutate("toggle_subtask_complete", func(tasks []*domain.Task) ([]*domain.Task, error) {
		t := findTask(tasks, parentID)
		if t == nil {
			return nil, &domain.NotFoundError{Kind: "task", ID: parentID}
		}
		for _, s := range t.Subtasks {
			if s.ID == subID {
				s.Completed = !s.Completed
				return tasks, nil
			}
		}
		return nil, &domain.NotFoundError{Kind: "subtask", ID: subID}
	})
}

// DeleteSubtask removes a subtask from its parent's sequence.
func (l *List) DeleteSubtask(parentID, subID string) error {
	return l.mutate("delete_subtask", func(tasks []*domain.Task) ([]*domain.Task, error) {
		t := findTask(tasks, parentID)
		if t == nil {
			return nil, &domain.NotFoundError{Kind: "task", ID: parentID}
		}
		for i, s := range t.Subtasks {
			if s.ID == subID {
				t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
				return tasks, nil
			}
		}
		return nil, &domain.NotFoundError{Kind: "subtask", ID: subID}
	})
}

// Reorder moves a task to newIndex within canonical order, shifting the
// rest. The index is clamped to the collection bounds. Moving a task to
// its current position is a no-op and does not flush.
func (l *List) Reorder(id string, newIndex int) error {
	return l.mutate("reorder", func(tasks []*domain.Task) ([]*domain.Task, error) {
		from := -1
		for i, t := range tasks {
			if t.ID == id {
				from = i
				break
			}
		}
		if from < 0 {
			return nil, &domain.NotFoundError{Kind: "task", ID: id}
		}

		to := newIndex
		if to < 0 {
			to = 0
		}
		if to > len(tasks)-1 {
			to = len(tasks) - 1
		}
		if to == from {
			return nil, errNoop
		}

		moved := tasks[from]
		tasks = append(tasks[:from], tasks[from+1:]...)
		tasks = append(tasks[:to], append([]*domain.Task{moved}, tasks[to:]...)...)
		return tasks, nil
	})
}

// Clear removes every task from the collection.
func (l *List) Clear() error {
	return l.mutate("clear", func(tasks []*domain.Task) ([]*domain.Task, error) {
		if len(tasks) == 0 {
			return nil, errNoop
		}
		return []*domain.Task{}, nil
	})
}

// Get returns a copy of the task with the given ID.
func (l *List) Get(id string) (*domain.Task, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if t := findTask(l.tasks, id); t != nil {
		return t.Clone(), nil
	}
	return nil, &domain.NotFoundError{Kind: "task", ID: id}
}

// Len returns the number of tasks in the collection.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tasks)
}

func findTask(tasks []*domain.Task, id string) *domain.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
