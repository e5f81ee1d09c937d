package model

import "time"

// Priority is the derived urgency of a task.
type Priority string

const (
	PriorityHigh     Priority = "high"
	PriorityModerate Priority = "moderate"
)

// Category groups tasks by topic. Declaration order matters: the classifier
// picks the first category whose keywords appear in the text.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryMeeting  Category = "Meeting"
	CategoryFollowUp Category = "Follow-up"
	CategoryReview   Category = "Review"
	CategoryOther    Category = "Other"
)

// Categories lists the keyword-backed categories in match order.
// CategoryOther is the fallback and is not included.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryMeeting,
	CategoryFollowUp,
	CategoryReview,
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// TaskSource records which message field a task was inferred from.
type TaskSource string

const (
	TaskSourceSubject TaskSource = "subject"
	TaskSourceBody    TaskSource = "body"
)

// Task is an actionable item inferred from a message subject or body.
type Task struct {
	// ID is the internal unique identifier for this task.
	ID string `json:"id"`

	// MessageID links the task back to the message it was inferred from.
	MessageID string `json:"message_id,omitempty"`

	// Text is the subject or body text the task was detected in.
	Text string `json:"text"`

	Priority Priority `json:"priority"`
	Category Category `json:"category"`

	// Deadline is the best candidate deadline found in the text, if any.
	Deadline *time.Time `json:"deadline,omitempty"`

	// DeadlineConfidence scores the textual evidence for Deadline in [0,1].
	DeadlineConfidence float64 `json:"deadline_confidence"`

	// DeadlineContext is the text window around the winning date match.
	DeadlineContext string `json:"deadline_context"`

	// Confidence is the task-detection score (not capped).
	Confidence float64 `json:"confidence"`

	Status    Status `json:"status"`
	Completed bool   `json:"completed"`

	// From is the sender address of the originating message.
	From string `json:"from"`

	Source TaskSource `json:"source"`

	CompletionDate *time.Time `json:"completion_date,omitempty"`
	LastModified   *time.Time `json:"last_modified,omitempty"`

	// CreatedAt is when the task was inferred.
	CreatedAt time.Time `json:"created_at"`
}

// IsHigh reports whether the task has high priority.
func (t Task) IsHigh() bool {
	return t.Priority == PriorityHigh
}

// IsPending reports whether the task is still pending.
func (t Task) IsPending() bool {
	return t.Status == StatusPending
}

// ApplyDeadline copies a resolved deadline onto the task. A result without a
// date leaves the task untouched.
func (t *Task) ApplyDeadline(d DeadlineResult) {
	if d.Date == nil {
		return
	}
	date := *d.Date
	t.Deadline = &date
	t.DeadlineConfidence = d.Confidence
	t.DeadlineContext = d.Context
}
