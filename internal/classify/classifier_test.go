package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtasks/internal/model"
)

var refNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func TestClassifier_Classify_UrgentSubject(t *testing.T) {
	c := NewClassifier(nil, nil, 0, nil)

	task, ok := c.Classify("Please submit the report by tomorrow, this is urgent", true, refNow)
	require.True(t, ok)
	require.NotNil(t, task)

	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, model.CategoryWork, task.Category)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.GreaterOrEqual(t, task.Confidence, DefaultThreshold)
	require.NotNil(t, task.Deadline)
	assert.True(t, refNow.AddDate(0, 0, 1).Equal(*task.Deadline))
	assert.Greater(t, task.DeadlineConfidence, 0.0)
	assert.NotEmpty(t, task.DeadlineContext)
}

func TestClassifier_Classify_Threshold(t *testing.T) {
	c := NewClassifier(nil, nil, 0, nil)

	tests := []struct {
		name      string
		text      string
		isSubject bool
		wantOK    bool
		wantConf  float64
	}{
		{"no indicators", "Lunch was great", false, false, 0},
		{"single body keyword below threshold", "I did a review", false, false, 0},
		{"body keyword at start reaches threshold", "review the doc", false, true, 0.3},
		{"subject keyword weighs more", "I did a review", true, true, 0.3},
		{"empty text", "", true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, ok := c.Classify(tt.text, tt.isSubject, refNow)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, task)
				assert.InDelta(t, tt.wantConf, task.Confidence, 1e-9)
			} else {
				assert.Nil(t, task)
			}
		})
	}
}

func TestClassifier_Classify_QuestionAndOpener(t *testing.T) {
	c := NewClassifier(nil, nil, 0, nil)

	task, ok := c.Classify("Can you send the file?", false, refNow)
	require.True(t, ok)
	// can you (0.2 + 0.1 at start) + send 0.2 + opener 0.2 + question 0.1
	assert.InDelta(t, 0.8, task.Confidence, 1e-9)
}

func TestClassifier_CustomThreshold(t *testing.T) {
	c := NewClassifier(nil, nil, 0.5, nil)

	_, ok := c.Classify("review the doc", false, refNow)
	assert.False(t, ok)
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier(nil, nil, 0, nil)
	text := "Could you check the client deck by next Friday?"

	first, ok1 := c.Classify(text, false, refNow)
	second, ok2 := c.Classify(text, false, refNow)

	require.Equal(t, ok1, ok2)
	require.True(t, ok1)
	assert.Equal(t, first.Priority, second.Priority)
	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Deadline, second.Deadline)
}

func TestClassifier_Priority(t *testing.T) {
	c := NewClassifier(nil, nil, 0, nil)

	at := func(d time.Duration, confidence float64) model.DeadlineResult {
		date := refNow.Add(d)
		return model.DeadlineResult{Date: &date, Confidence: confidence, Context: "x"}
	}

	tests := []struct {
		name string
		text string
		d    model.DeadlineResult
		want model.Priority
	}{
		{"urgency word", "this is critical", model.DeadlineResult{}, model.PriorityHigh},
		{"time sensitive phrase alone", "as soon as you can", model.DeadlineResult{}, model.PriorityModerate},
		{"within a day", "plain text", at(12*time.Hour, 0.4), model.PriorityHigh},
		{"overdue counts as within a day", "plain text", at(-48*time.Hour, 0.4), model.PriorityHigh},
		{"within three days", "plain text", at(48*time.Hour, 0.4), model.PriorityModerate},
		{"within three days and confident", "plain text", at(48*time.Hour, 0.8), model.PriorityHigh},
		{"within a week", "plain text", at(5*24*time.Hour, 0.6), model.PriorityModerate},
		{"far away but confident", "plain text", at(30*24*time.Hour, 0.9), model.PriorityModerate},
		{"nothing", "plain text", model.DeadlineResult{}, model.PriorityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Priority(tt.text, tt.d, refNow))
		})
	}
}

func TestClassifier_Category(t *testing.T) {
	c := NewClassifier(nil, nil, 0, nil)

	tests := []struct {
		text string
		want model.Category
	}{
		{"team meeting tomorrow", model.CategoryWork},
		{"Family dinner on Sunday", model.CategoryPersonal},
		{"call mom", model.CategoryMeeting},
		{"please confirm the booking", model.CategoryFollowUp},
		{"assess the risk", model.CategoryReview},
		{"hello there", model.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Category(tt.text))
		})
	}
}
