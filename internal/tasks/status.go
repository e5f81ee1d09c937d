package tasks

import (
	"strings"
	"time"

	"github.com/nhle/mailtasks/internal/model"
)

// UpdateStatus sets the task status. The completion date is stamped only on
// the transition into completed; reopening keeps the last completion date
// and clears only Completed. LastModified is refreshed on every call.
func UpdateStatus(task *model.Task, status string, now time.Time) {
	s := model.Status(strings.ToLower(strings.TrimSpace(status)))
	wasCompleted := task.Completed

	task.Status = s
	task.Completed = s == model.StatusCompleted

	if task.Completed && !wasCompleted {
		stamp := now
		task.CompletionDate = &stamp
	}

	modified := now
	task.LastModified = &modified
}
