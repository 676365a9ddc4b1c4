package domain

import "fmt"

// ValidationError reports rejected user input (empty title, bad
// priority, malformed date). The operation that raised it left all
// state untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// NotFoundError reports a reference to a task or subtask ID that does
// not exist. In correct usage the presentation layer only passes IDs it
// was handed, so this usually indicates a desync, but it is reported
// rather than treated as fatal.
type NotFoundError struct {
	Kind string // "task" or "subtask"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// CorruptStoreError reports a backing file that exists but cannot be
// read as a valid task document. The caller decides whether to start
// empty or abort; the store keeps a backup copy of the unreadable file.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt task store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}
