package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~jakintosh/taskdesk/internal/domain"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tasks.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteEmptyDatabase(t *testing.T) {
	s := newSQLiteStore(t)

	tasks, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	want := sampleTasks()

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b domain.Date) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteSaveReplacesCollection(t *testing.T) {
	s := newSQLiteStore(t)
	require.NoError(t, s.Save(sampleTasks()))

	due := domain.NewDate(2027, time.February, 14)
	replacement := []*domain.Task{
		{
			ID:       "only",
			Title:    "sole survivor",
			Priority: domain.PriorityLow,
			DueDate:  &due,
			Subtasks: []*domain.Subtask{},
		},
	}
	require.NoError(t, s.Save(replacement))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].ID)
	assert.Empty(t, got[0].Subtasks)
}

func TestSQLitePreservesOrder(t *testing.T) {
	s := newSQLiteStore(t)

	tasks := []*domain.Task{
		{ID: "c", Title: "c", Priority: domain.PriorityLow, Subtasks: []*domain.Subtask{}},
		{ID: "a", Title: "a", Priority: domain.PriorityHigh, Subtasks: []*domain.Subtask{
			{ID: "a-2", Title: "second"},
			{ID: "a-1", Title: "first"},
		}},
		{ID: "b", Title: "b", Priority: domain.PriorityMedium, Subtasks: []*domain.Subtask{}},
	}
	require.NoError(t, s.Save(tasks))

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "b", got[2].ID)
	require.Len(t, got[1].Subtasks, 2)
	assert.Equal(t, "a-2", got[1].Subtasks[0].ID, "subtask insertion order is canonical")
	assert.Equal(t, "a-1", got[1].Subtasks[1].ID)
}
