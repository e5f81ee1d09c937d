package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtasks/internal/model"
)

var refNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func fixtureTasks() []model.Task {
	return []model.Task{
		{ID: "1", Text: "a", Priority: model.PriorityModerate, Category: model.CategoryWork, Status: model.StatusPending,
			Deadline: ptrTime(refNow.AddDate(0, 0, 3))},
		{ID: "2", Text: "b", Priority: model.PriorityHigh, Category: model.CategoryReview, Status: model.StatusCompleted, Completed: true,
			Deadline: ptrTime(refNow.AddDate(0, 0, 1))},
		{ID: "3", Text: "c", Priority: model.PriorityHigh, Category: model.CategoryWork, Status: model.StatusPending,
			Deadline: ptrTime(refNow.AddDate(0, 0, 5))},
		{ID: "4", Text: "d", Priority: model.PriorityModerate, Category: model.CategoryMeeting, Status: model.StatusCompleted, Completed: true,
			Deadline: ptrTime(refNow.AddDate(0, 0, 2))},
		{ID: "5", Text: "e", Priority: model.PriorityHigh, Category: model.CategoryOther, Status: model.StatusPending},
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestPrioritize_SortKeys(t *testing.T) {
	a := NewAggregator(nil)

	tests := []struct {
		name    string
		key     SortKey
		reverse bool
		want    []string
	}{
		{"priority reversed puts high first, latest deadline first", SortByPriority, true, []string{"3", "2", "5", "1", "4"}},
		{"priority ascending", SortByPriority, false, []string{"4", "1", "5", "2", "3"}},
		{"deadline ascending, missing first", SortByDeadline, false, []string{"5", "2", "4", "1", "3"}},
		{"category ascending", SortByCategory, false, []string{"4", "5", "2", "1", "3"}},
		{"status reversed puts pending high first", SortByStatus, true, []string{"3", "5", "1", "2", "4"}},
		{"unknown key falls back to priority", SortKey("bogus"), true, []string{"3", "2", "5", "1", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Prioritize(fixtureTasks(), tt.key, tt.reverse, refNow)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestPrioritize_HighBeforeModerate(t *testing.T) {
	got := NewAggregator(nil).Prioritize(fixtureTasks(), SortByPriority, true, refNow)

	seenModerate := false
	for _, task := range got {
		if task.Priority == model.PriorityModerate {
			seenModerate = true
			continue
		}
		assert.False(t, seenModerate, "high task %s after a moderate one", task.ID)
	}
}

func TestPrioritize_StableForEqualKeys(t *testing.T) {
	in := []model.Task{
		{ID: "x", Priority: model.PriorityModerate, Category: model.CategoryWork, Text: "x"},
		{ID: "y", Priority: model.PriorityModerate, Category: model.CategoryWork, Text: "y"},
		{ID: "z", Priority: model.PriorityModerate, Category: model.CategoryWork, Text: "z"},
	}

	assert.Equal(t, []string{"x", "y", "z"}, ids(NewAggregator(nil).Prioritize(in, SortByCategory, false, refNow)))
	assert.Equal(t, []string{"x", "y", "z"}, ids(NewAggregator(nil).Prioritize(in, SortByCategory, true, refNow)))
}

func TestPrioritize_FillsMissingFields(t *testing.T) {
	in := []model.Task{{ID: "1", Text: "Please submit the report by tomorrow, this is urgent"}}

	got := NewAggregator(nil).Prioritize(in, SortByPriority, true, refNow)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Deadline)
	assert.True(t, refNow.AddDate(0, 0, 1).Equal(*got[0].Deadline))
	assert.Equal(t, model.PriorityHigh, got[0].Priority)

	assert.Nil(t, in[0].Deadline, "input slice is not modified")
	assert.Empty(t, in[0].Priority)
}

func TestFilterTasks(t *testing.T) {
	all := fixtureTasks()

	completed, err := ParseFilter(map[string]string{"status": "Completed"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, ids(FilterTasks(all, completed)))

	high, err := ParseFilter(map[string]string{"priority": "HIGH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "5"}, ids(FilterTasks(all, high)))

	both, err := ParseFilter(map[string]string{"status": "completed", "priority": "high"})
	require.NoError(t, err)
	assert.Equal(t, ids(FilterTasks(FilterTasks(all, completed), high)), ids(FilterTasks(all, both)))
	assert.Equal(t, []string{"2"}, ids(FilterTasks(all, both)))

	work, err := ParseFilter(map[string]string{"category": "work", "completed": "false"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(FilterTasks(all, work)))

	none, err := ParseFilter(nil)
	require.NoError(t, err)
	assert.True(t, none.Empty())
	assert.Len(t, FilterTasks(all, none), len(all))
}

func TestFilterTasks_AbsentFieldExcluded(t *testing.T) {
	in := []model.Task{
		{ID: "1", Status: model.StatusPending},
		{ID: "2"},
	}
	f, err := ParseFilter(map[string]string{"status": "pending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(FilterTasks(in, f)))

	f, err = ParseFilter(map[string]string{"priority": ""})
	require.NoError(t, err)
	assert.Empty(t, FilterTasks(in, f))
}

func TestParseFilter_Errors(t *testing.T) {
	_, err := ParseFilter(map[string]string{"owner": "me"})
	assert.ErrorContains(t, err, `unknown filter field "owner"`)

	_, err = ParseFilter(map[string]string{"completed": "maybe"})
	assert.Error(t, err)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortByDeadline, ParseSortKey(" Deadline "))
	assert.Equal(t, SortByStatus, ParseSortKey("status"))
	assert.Equal(t, SortByPriority, ParseSortKey("whatever"))
}

func TestUpdateStatus(t *testing.T) {
	task := &model.Task{ID: "1", Status: model.StatusPending}

	UpdateStatus(task, "Completed", refNow)
	assert.Equal(t, model.StatusCompleted, task.Status)
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletionDate)
	assert.Equal(t, refNow, *task.CompletionDate)
	require.NotNil(t, task.LastModified)
	assert.Equal(t, refNow, *task.LastModified)

	later := refNow.Add(time.Hour)
	UpdateStatus(task, "completed", later)
	assert.Equal(t, model.StatusCompleted, task.Status)
	assert.True(t, task.Completed)
	assert.Equal(t, refNow, *task.CompletionDate, "completion date is not restamped")
	assert.Equal(t, later, *task.LastModified)

	UpdateStatus(task, "PENDING", later.Add(time.Hour))
	assert.Equal(t, model.StatusPending, task.Status)
	assert.False(t, task.Completed)
	require.NotNil(t, task.CompletionDate, "reopen keeps the last completion date")
	assert.Equal(t, refNow, *task.CompletionDate)
	assert.Equal(t, later.Add(time.Hour), *task.LastModified)

	// Completing again after a reopen is a new transition and restamps.
	again := later.Add(2 * time.Hour)
	UpdateStatus(task, "completed", again)
	assert.True(t, task.Completed)
	assert.Equal(t, again, *task.CompletionDate)
}
