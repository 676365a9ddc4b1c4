package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"high", PriorityHigh, false},
		{"medium", PriorityMedium, false},
		{"low", PriorityLow, false},
		{"", "", true},
		{"High", "", true},
		{"urgent", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityOrdering(t *testing.T) {
	assert.True(t, PriorityHigh.Before(PriorityMedium))
	assert.True(t, PriorityMedium.Before(PriorityLow))
	assert.False(t, PriorityLow.Before(PriorityHigh))
	assert.False(t, PriorityHigh.Before(PriorityHigh))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", d.String())

	for _, bad := range []string{"", "06/01/2024", "2024-13-01", "yesterday", "2024-06-01T10:00:00Z"} {
		_, err := ParseDate(bad)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "input %q", bad)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, time.March, 9)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-09"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, d.Equal(back))

	// The legacy format wrote "" for absent dates.
	var zero Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &zero))
	assert.True(t, zero.IsZero())

	require.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &back))
	require.Error(t, json.Unmarshal([]byte(`42`), &back))
}

func TestTaskClone(t *testing.T) {
	due := NewDate(2026, time.July, 4)
	orig := &Task{
		ID:       "t-1",
		Title:    "original",
		Priority: PriorityHigh,
		DueDate:  &due,
		Subtasks: []*Subtask{{ID: "s-1", Title: "sub"}},
	}

	clone := orig.Clone()
	clone.Title = "changed"
	*clone.DueDate = NewDate(2030, time.January, 1)
	clone.Subtasks[0].Completed = true
	clone.Subtasks = append(clone.Subtasks, &Subtask{ID: "s-2", Title: "new"})

	assert.Equal(t, "original", orig.Title)
	assert.Equal(t, "2026-07-04", orig.DueDate.String())
	require.Len(t, orig.Subtasks, 1)
	assert.False(t, orig.Subtasks[0].Completed)
}

func TestParseSortMode(t *testing.T) {
	for _, ok := range []string{"original", "priority", "due_date"} {
		got, err := ParseSortMode(ok)
		require.NoError(t, err)
		assert.Equal(t, SortMode(ok), got)
	}
	_, err := ParseSortMode("alphabetical")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
