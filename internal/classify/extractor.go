package classify

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/model"
)

// Extractor turns messages into tasks, one classification per subject and
// one per body.
type Extractor struct {
	classifier *Classifier
	logger     *zap.Logger
}

// NewExtractor creates an extractor around c.
func NewExtractor(c *Classifier, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{classifier: c, logger: logger}
}

// Extract classifies every message in order. Messages that yield no task
// are skipped.
func (e *Extractor) Extract(msgs []model.Message, now time.Time) []model.Task {
	var out []model.Task
	for _, msg := range msgs {
		out = append(out, e.ExtractMessage(msg, now)...)
	}
	e.logger.Debug("extracted tasks",
		zap.Int("messages", len(msgs)),
		zap.Int("tasks", len(out)),
	)
	return out
}

// ExtractMessage classifies the subject and the body of msg. The body
// deadline is resolved once and applied to any fragment without its own.
func (e *Extractor) ExtractMessage(msg model.Message, now time.Time) []model.Task {
	c := e.classifier
	body := msg.Text()
	bodyDeadline := c.resolver.Resolve(body, now)

	var tasks []model.Task
	emit := func(task *model.Task, src model.TaskSource) {
		if task.Deadline == nil && bodyDeadline.Found() {
			task.ApplyDeadline(bodyDeadline)
			task.Priority = c.Priority(task.Text, bodyDeadline, now)
		}
		task.ID = taskID(msg.ID, src)
		task.MessageID = msg.ID
		task.From = msg.From
		task.Source = src
		task.CreatedAt = now
		tasks = append(tasks, *task)
	}

	if task, ok := c.Classify(msg.Subject, true, now); ok {
		emit(task, model.TaskSourceSubject)
	}
	if task, ok := c.classifyWithDeadline(body, false, bodyDeadline, now); ok {
		emit(task, model.TaskSourceBody)
	}
	return tasks
}

// taskID derives a stable ID from the message and fragment so that
// re-extracting a message yields the same task IDs. Messages without an ID
// get random ones.
func taskID(messageID string, src model.TaskSource) string {
	if messageID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(messageID+"#"+string(src))).String()
}
