package store

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
)

// SQLiteStore persists the task collection in a local sqlite database.
// It honors the same whole-collection Load/Save contract as FileStore;
// canonical order is kept in sort_order columns.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			priority TEXT NOT NULL,
			due_date TEXT,
			completed INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS subtasks (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			title TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);
	`)
	return err
}

func (s *SQLiteStore) Load() ([]*domain.Task, error) {
	rows, err := s.db.Query(`
		SELECT
			id,
			title,
			priority,
			due_date,
			completed
		FROM tasks
		ORDER BY sort_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// get all tasks
	tasks := []*domain.Task{}
	byID := make(map[string]*domain.Task)
	for rows.Next() {
		var t domain.Task
		var due sql.NullString
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Priority,
			&due,
			&t.Completed,
		); err != nil {
			return nil, err
		}
		if due.Valid && due.String != "" {
			d, err := domain.ParseDate(due.String)
			if err != nil {
				return nil, &domain.CorruptStoreError{Path: "tasks", Err: fmt.Errorf("task %s: %w", t.ID, err)}
			}
			t.DueDate = &d
		}
		if !t.Priority.Valid() {
			return nil, &domain.CorruptStoreError{Path: "tasks", Err: fmt.Errorf("task %s: invalid priority %q", t.ID, string(t.Priority))}
		}
		t.Subtasks = []*domain.Subtask{}
		tasks = append(tasks, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// get all subtasks
	subRows, err := s.db.Query(`
		SELECT
			id,
			task_id,
			title,
			completed
		FROM subtasks
		ORDER BY sort_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		var sub domain.Subtask
		var taskID string
		if err := subRows.Scan(
			&sub.ID,
			&taskID,
			&sub.Title,
			&sub.Completed,
		); err != nil {
			return nil, err
		}
		if parent, ok := byID[taskID]; ok {
			parent.Subtasks = append(parent.Subtasks, &sub)
		}
	}
	if err := subRows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Save rewrites both tables in one transaction so the stored collection
// always matches the in-memory one exactly, including order.
func (s *SQLiteStore) Save(tasks []*domain.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM subtasks`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return err
	}

	for i, t := range tasks {
		var due any
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		if _, err := tx.Exec(`
			INSERT INTO tasks (id, title, priority, due_date, completed, sort_order)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID,
			t.Title,
			string(t.Priority),
			due,
			t.Completed,
			i,
		); err != nil {
			return err
		}
		for j, sub := range t.Subtasks {
			if _, err := tx.Exec(`
				INSERT INTO subtasks (id, task_id, title, completed, sort_order)
				VALUES (?, ?, ?, ?, ?)`,
				sub.ID,
				t.ID,
				sub.Title,
				sub.Completed,
				j,
			); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("collection saved", zap.Int("tasks", len(tasks)))
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
