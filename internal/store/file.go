// Package store provides the persistence backends for the task
// collection: a JSON document store (the default) and a sqlite store.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
)

// schemaVersion is written into every new document. Documents without
// it (the legacy bare-array format) are still readable.
const schemaVersion = 1

// document is the on-disk JSON shape. Array order is canonical order.
type document struct {
	SchemaVersion int            `json:"schema_version"`
	Tasks         []*domain.Task `json:"tasks"`
}

// FileStore persists the task collection as a single JSON document.
// Writes go to a temp file in the same directory followed by a rename,
// so a crash mid-write never truncates the previous contents. A file
// lock next to the document enforces at most one writing process.
type FileStore struct {
	path   string
	flk    *flock.Flock
	logger *zap.Logger
}

// NewFileStore opens a JSON store at path, creating parent directories
// as needed and acquiring the writer lock. It fails if another process
// already holds the lock.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
	}

	flk := flock.New(path + ".lock")
	locked, err := flk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock %s: %w", flk.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("task store %s is locked by another process", path)
	}

	return &FileStore{
		path:   path,
		flk:    flk,
		logger: logger,
	}, nil
}

// Load reads the document from disk. A missing file is a first run and
// returns an empty collection. A file that exists but cannot be parsed
// or fails schema validation is copied aside to <path>.bak.<unix-ts>
// and reported as a CorruptStoreError; the caller decides whether to
// start empty.
func (s *FileStore) Load() ([]*domain.Task, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []*domain.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task store %s: %w", s.path, err)
	}

	tasks, err := decodeDocument(data)
	if err != nil {
		s.backupCorrupt()
		return nil, &domain.CorruptStoreError{Path: s.path, Err: err}
	}

	normalizeTasks(tasks)
	return tasks, nil
}

// Save serializes the full collection and atomically replaces the
// document. Write failures are wrapped and surfaced; silent persistence
// failure is the worst failure mode this store can have.
func (s *FileStore) Save(tasks []*domain.Task) error {
	doc := document{
		SchemaVersion: schemaVersion,
		Tasks:         tasks,
	}
	if doc.Tasks == nil {
		doc.Tasks = []*domain.Task{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task store: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace task store %s: %w", s.path, err)
	}
	return nil
}

// Close releases the writer lock.
func (s *FileStore) Close() error {
	if s.flk == nil {
		return nil
	}
	return s.flk.Unlock()
}

// decodeDocument parses either the current wrapper format or the legacy
// unversioned bare-array format, validating the tasks array against the
// embedded schema before the typed decode.
func decodeDocument(data []byte) ([]*domain.Task, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return []*domain.Task{}, nil
	}

	var rawTasks json.RawMessage
	if trimmed[0] == '[' {
		rawTasks = json.RawMessage(trimmed)
	} else {
		var probe struct {
			SchemaVersion int             `json:"schema_version"`
			Tasks         json.RawMessage `json:"tasks"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		if probe.SchemaVersion > schemaVersion {
			return nil, fmt.Errorf("unsupported schema_version %d", probe.SchemaVersion)
		}
		if probe.Tasks == nil {
			return nil, fmt.Errorf("document has no tasks array")
		}
		rawTasks = probe.Tasks
	}

	if err := validateTaskList(rawTasks); err != nil {
		return nil, err
	}

	var tasks []*domain.Task
	if err := json.Unmarshal(rawTasks, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	return tasks, nil
}

func validateTaskList(raw json.RawMessage) error {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("parse tasks: %w", err)
	}
	if err := compiledTaskListSchema.Validate(generic); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// normalizeTasks fixes up legacy documents in place: missing IDs get
// fresh uuids, empty-string due dates become "no date", empty priority
// defaults to medium, and nil subtask slices become empty ones.
func normalizeTasks(tasks []*domain.Task) {
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if !t.Priority.Valid() {
			t.Priority = domain.PriorityMedium
		}
		if t.DueDate != nil && t.DueDate.IsZero() {
			t.DueDate = nil
		}
		if t.Subtasks == nil {
			t.Subtasks = []*domain.Subtask{}
		}
		for _, sub := range t.Subtasks {
			if sub.ID == "" {
				sub.ID = uuid.NewString()
			}
		}
	}
}

// backupCorrupt copies an unreadable document aside so recovering with
// an empty collection never destroys the user's data.
func (s *FileStore) backupCorrupt() {
	bak := fmt.Sprintf("%s.bak.%d", s.path, time.Now().Unix())
	if err := copyFile(s.path, bak); err != nil {
		s.logger.Warn("failed to back up corrupt store",
			zap.String("path", s.path),
			zap.Error(err))
		return
	}
	s.logger.Warn("backed up corrupt store",
		zap.String("path", s.path),
		zap.String("backup", bak))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
