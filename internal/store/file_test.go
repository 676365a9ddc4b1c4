package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
)

func newFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func sampleTasks() []*domain.Task {
	due := domain.NewDate(2024, time.June, 1)
	return []*domain.Task{
		{
			ID:       "t-1",
			Title:    "Buy milk",
			Priority: domain.PriorityMedium,
			DueDate:  &due,
			Subtasks: []*domain.Subtask{
				{ID: "s-1", Title: "2%", Completed: true},
				{ID: "s-2", Title: "oat", Completed: false},
			},
		},
		{
			ID:        "t-2",
			Title:     "No date, no subtasks",
			Priority:  domain.PriorityHigh,
			Completed: true,
			Subtasks:  []*domain.Subtask{},
		},
		{
			ID:       "t-3",
			Title:    "Low",
			Priority: domain.PriorityLow,
			Subtasks: []*domain.Subtask{},
		},
	}
}

func TestLoadMissingFileIsFirstRun(t *testing.T) {
	s, _ := newFileStore(t)

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRoundTrip(t *testing.T) {
	s, _ := newFileStore(t)
	want := sampleTasks()

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b domain.Date) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// A second save/load cycle must be byte-stable too.
	require.NoError(t, s.Save(got))
	again, err := s.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(got, again, cmp.Comparer(func(a, b domain.Date) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("second round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveWritesVersionedDocument(t *testing.T) {
	s, path := newFileStore(t)
	require.NoError(t, s.Save(sampleTasks()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 0 && data[len(data)-1] == '\n', "document ends with newline")

	var doc struct {
		SchemaVersion int               `json:"schema_version"`
		Tasks         []json.RawMessage `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.SchemaVersion)
	assert.Len(t, doc.Tasks, 3)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s, path := newFileStore(t)
	require.NoError(t, s.Save(sampleTasks()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestLoadLegacyBareArray(t *testing.T) {
	s, path := newFileStore(t)

	legacy := `[
  {
    "id": "7",
    "title": "from the old app",
    "completed": false,
    "priority": "high",
    "due_date": "",
    "subtasks": [
      {"title": "no id here", "completed": true}
    ]
  }
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	tasks, err := s.Load()
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Nil(t, got.DueDate, "empty-string due date reads as no date")
	require.Len(t, got.Subtasks, 1)
	assert.NotEmpty(t, got.Subtasks[0].ID, "missing subtask IDs are backfilled")
	assert.True(t, got.Subtasks[0].Completed)
}

func TestLoadLegacyEmptyPriorityDefaultsToMedium(t *testing.T) {
	s, path := newFileStore(t)

	legacy := `[{"title": "no priority set", "completed": false, "priority": "", "due_date": ""}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	tasks, err := s.Load()
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.PriorityMedium, tasks[0].Priority)
	assert.NotEmpty(t, tasks[0].ID)
	assert.NotNil(t, tasks[0].Subtasks)
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{{`},
		{"wrong root type", `"just a string"`},
		{"bad priority", `[{"title": "x", "completed": false, "priority": "urgent"}]`},
		{"bad due date", `[{"title": "x", "completed": false, "priority": "high", "due_date": "tomorrow"}]`},
		{"wrapper without tasks", `{"schema_version": 1}`},
		{"future schema version", `{"schema_version": 99, "tasks": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path := newFileStore(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := s.Load()
			var corrupt *domain.CorruptStoreError
			require.ErrorAs(t, err, &corrupt)
			assert.Equal(t, path, corrupt.Path)

			// The unreadable file was copied aside.
			matches, globErr := filepath.Glob(path + ".bak.*")
			require.NoError(t, globErr)
			require.Len(t, matches, 1)
			bak, readErr := os.ReadFile(matches[0])
			require.NoError(t, readErr)
			assert.Equal(t, tt.body, string(bak))
		})
	}
}

func TestSaveOverwritesPreviousContents(t *testing.T) {
	s, _ := newFileStore(t)

	require.NoError(t, s.Save(sampleTasks()))
	require.NoError(t, s.Save([]*domain.Task{}))

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSecondStoreCannotAcquireLock(t *testing.T) {
	_, path := newFileStore(t)

	_, err := NewFileStore(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestSaveFailsOnUnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind for root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.Chmod(dir, 0o555))
	defer os.Chmod(dir, 0o755)

	err = s.Save(sampleTasks())
	require.Error(t, err, "write failures must be surfaced, not swallowed")
}
