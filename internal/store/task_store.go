package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/tasks"
)

const taskColumns = `id, message_id, text, priority, category,
	deadline, deadline_confidence, deadline_context, confidence,
	status, completed, from_addr, source,
	completion_date, last_modified, created_at`

// taskRow is the column layout of the tasks table.
type taskRow struct {
	ID                 string     `db:"id"`
	MessageID          string     `db:"message_id"`
	Text               string     `db:"text"`
	Priority           string     `db:"priority"`
	Category           string     `db:"category"`
	Deadline           *time.Time `db:"deadline"`
	DeadlineConfidence float64    `db:"deadline_confidence"`
	DeadlineContext    string     `db:"deadline_context"`
	Confidence         float64    `db:"confidence"`
	Status             string     `db:"status"`
	Completed          int        `db:"completed"`
	From               string     `db:"from_addr"`
	Source             string     `db:"source"`
	CompletionDate     *time.Time `db:"completion_date"`
	LastModified       *time.Time `db:"last_modified"`
	CreatedAt          time.Time  `db:"created_at"`
}

func (r taskRow) toTask() model.Task {
	return model.Task{
		ID:                 r.ID,
		MessageID:          r.MessageID,
		Text:               r.Text,
		Priority:           model.Priority(r.Priority),
		Category:           model.Category(r.Category),
		Deadline:           r.Deadline,
		DeadlineConfidence: r.DeadlineConfidence,
		DeadlineContext:    r.DeadlineContext,
		Confidence:         r.Confidence,
		Status:             model.Status(r.Status),
		Completed:          r.Completed != 0,
		From:               r.From,
		Source:             model.TaskSource(r.Source),
		CompletionDate:     r.CompletionDate,
		LastModified:       r.LastModified,
		CreatedAt:          r.CreatedAt,
	}
}

// UpsertTasks inserts new tasks and refreshes the inferred fields of
// existing ones. Lifecycle fields (status, completion, creation time) of a
// task already in the store are kept.
func (s *SQLiteStore) UpsertTasks(ctx context.Context, ts []model.Task) error {
	if len(ts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO tasks (
			id, message_id, text, priority, category,
			deadline, deadline_confidence, deadline_context, confidence,
			status, completed, from_addr, source,
			completion_date, last_modified, created_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?
		)
		ON CONFLICT(id) DO UPDATE SET
			message_id = excluded.message_id,
			text = excluded.text,
			priority = excluded.priority,
			category = excluded.category,
			deadline = excluded.deadline,
			deadline_confidence = excluded.deadline_confidence,
			deadline_context = excluded.deadline_context,
			confidence = excluded.confidence,
			from_addr = excluded.from_addr,
			source = excluded.source`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range ts {
		status := t.Status
		if status == "" {
			status = model.StatusPending
		}

		_, err = stmt.ExecContext(ctx,
			t.ID, t.MessageID, t.Text, string(t.Priority), string(t.Category),
			utcPtr(t.Deadline), t.DeadlineConfidence, t.DeadlineContext, t.Confidence,
			string(status), boolToInt(t.Completed), t.From, string(t.Source),
			utcPtr(t.CompletionDate), utcPtr(t.LastModified), t.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	opts TaskFilter,
) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *opts.Priority)
	}
	if opts.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *opts.Category)
	}
	if opts.MessageID != nil {
		conditions = append(conditions, "message_id = ?")
		args = append(args, *opts.MessageID)
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "text LIKE ?")
		args = append(args, "%"+*opts.Query+"%")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "created_at"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"created_at": true,
			"deadline":   true,
			"priority":   true,
			"category":   true,
			"status":     true,
			"confidence": true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, rowid ASC", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	out := make([]model.Task, len(rows))
	for i, r := range rows {
		out[i] = r.toTask()
	}
	return out, nil
}

// GetTaskByID retrieves a single task by its ID. A missing task yields an
// error wrapping model.ErrTaskNotFound.
func (s *SQLiteStore) GetTaskByID(
	ctx context.Context,
	id string,
) (*model.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting task %s: %w", id, model.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	task := row.toTask()
	return &task, nil
}

// UpdateTaskStatus applies a status change to a stored task and returns
// the updated task.
func (s *SQLiteStore) UpdateTaskStatus(
	ctx context.Context,
	id, status string,
	now time.Time,
) (*model.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks.UpdateStatus(task, status, now)

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks SET
			status = ?, completed = ?, completion_date = ?, last_modified = ?
		WHERE id = ?`,
		string(task.Status), boolToInt(task.Completed),
		utcPtr(task.CompletionDate), utcPtr(task.LastModified),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %s status: %w", id, err)
	}
	return task, nil
}

// utcPtr converts an optional time to a UTC value or NULL.
func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
