package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority is the closed set of task priorities. The zero value is not
// valid; tasks always carry one of the three literals below.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// rank orders priorities for sorting: high before medium before low.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Before reports whether p sorts ahead of other in a priority view.
func (p Priority) Before(other Priority) bool {
	return p.rank() < other.rank()
}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ParsePriority parses a user-supplied priority string.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be one of high, medium, low; got %q", s)}
	}
	return p, nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date with no time component. Absence of a due date
// is represented by a nil *Date, never by a sentinel value.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "due_date", Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s)}
	}
	return Date{t: t}, nil
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is an earlier calendar date than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts an ISO date string. The legacy file format used
// "" for "no due date"; that decodes to the zero Date and is normalized
// to a nil pointer by the store.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid due date %q: %w", s, err)
	}
	*d = Date{t: t}
	return nil
}

// Subtask is a single-level child of a Task. Subtasks have no priority,
// due date, or children of their own.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is one entry in the canonical ordered collection. Its position in
// that collection is the "original" order the user arranges by hand.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Priority  Priority   `json:"priority"`
	DueDate   *Date      `json:"due_date,omitempty"`
	Completed bool       `json:"completed"`
	Subtasks  []*Subtask `json:"subtasks"`
}

// Clone returns a deep copy of the task, including its subtasks.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.Subtasks = make([]*Subtask, len(t.Subtasks))
	for i, s := range t.Subtasks {
		sc := *s
		c.Subtasks[i] = &sc
	}
	return &c
}

// CloneTasks deep-copies a whole collection, preserving order.
func CloneTasks(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// SortMode selects the derived view ordering. Only the view changes;
// canonical order is never touched by switching modes.
type SortMode string

const (
	SortOriginal SortMode = "original"
	SortPriority SortMode = "priority"
	SortDueDate  SortMode = "due_date"
)

func (m SortMode) Valid() bool {
	return m == SortOriginal || m == SortPriority || m == SortDueDate
}

// ParseSortMode parses a user-supplied sort mode string.
func ParseSortMode(s string) (SortMode, error) {
	m := SortMode(s)
	if !m.Valid() {
		return "", &ValidationError{Field: "sort", Reason: fmt.Sprintf("must be one of original, priority, due_date; got %q", s)}
	}
	return m, nil
}
