package store

import (
	"context"
	"time"

	"github.com/nhle/mailtasks/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Status    *string
	Priority  *string
	Category  *string
	MessageID *string
	Query     *string
	SortBy    string
	SortDesc  bool
	Limit     int
	Offset    int
}

// Store defines the persistence interface for messages, replayable message
// batches, and inferred tasks.
type Store interface {
	// === Messages ===

	UpsertMessages(ctx context.Context, msgs []model.Message) error
	GetMessage(ctx context.Context, id string) (*model.Message, error)
	GetMessages(ctx context.Context) ([]model.Message, error)

	// === Message batches ===

	// SaveBatch records msgs, in order, under a caller-chosen key,
	// replacing any batch previously stored under that key.
	SaveBatch(ctx context.Context, key string, msgs []model.Message) error

	// LoadBatch returns the batch stored under key and when it was saved.
	// ok is false when no batch exists.
	LoadBatch(ctx context.Context, key string) (msgs []model.Message, savedAt time.Time, ok bool, err error)

	// === Tasks ===

	UpsertTasks(ctx context.Context, tasks []model.Task) error
	GetTasks(ctx context.Context, opts TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, id, status string, now time.Time) (*model.Task, error)
}
