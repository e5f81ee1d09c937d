package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/mailtasks/internal/model"
)

const messageColumns = "id, date, from_addr, subject, snippet, body"

// UpsertMessages inserts or refreshes a batch of messages.
func (s *SQLiteStore) UpsertMessages(ctx context.Context, msgs []model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertMessagesTx(ctx, tx, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertMessagesTx(ctx context.Context, tx *sqlx.Tx, msgs []model.Message) error {
	const query = `
		INSERT INTO messages (
			id, date, from_addr, subject, snippet, body, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			from_addr = excluded.from_addr,
			subject = excluded.subject,
			snippet = excluded.snippet,
			body = excluded.body,
			fetched_at = excluded.fetched_at`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing message upsert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := time.Now().UTC()
	for _, m := range msgs {
		if m.ID == "" {
			return &model.MissingFieldError{Record: "message", Field: "id"}
		}
		_, err := stmt.ExecContext(ctx,
			m.ID, m.Date, m.From, m.Subject, m.Snippet, m.Body, fetchedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting message %s: %w", m.ID, err)
		}
	}
	return nil
}

// GetMessage retrieves a single message by ID. A missing message yields an
// error wrapping sql.ErrNoRows.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := s.db.GetContext(ctx, &msg,
		"SELECT "+messageColumns+" FROM messages WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w", id, err)
	}
	return &msg, nil
}

// GetMessages returns every stored message in first-insert order.
func (s *SQLiteStore) GetMessages(ctx context.Context) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.SelectContext(ctx, &msgs,
		"SELECT "+messageColumns+" FROM messages ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	return msgs, nil
}

// Get implements cache.MessageCache.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Message, bool, error) {
	msg, err := s.GetMessage(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Message{}, false, nil
	}
	if err != nil {
		return model.Message{}, false, err
	}
	return *msg, true, nil
}

// Put implements cache.MessageCache.
func (s *SQLiteStore) Put(ctx context.Context, msg model.Message) error {
	return s.UpsertMessages(ctx, []model.Message{msg})
}

// SaveBatch stores msgs and records their order under key.
func (s *SQLiteStore) SaveBatch(ctx context.Context, key string, msgs []model.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertMessagesTx(ctx, tx, msgs); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM message_batches WHERE cache_key = ?", key,
	); err != nil {
		return fmt.Errorf("clearing batch %s: %w", key, err)
	}

	savedAt := time.Now().UTC()
	for i, m := range msgs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO message_batches (cache_key, position, message_id, saved_at)
			VALUES (?, ?, ?, ?)`,
			key, i, m.ID, savedAt,
		); err != nil {
			return fmt.Errorf("saving batch %s: %w", key, err)
		}
	}

	return tx.Commit()
}

type batchRow struct {
	model.Message
	SavedAt time.Time `db:"saved_at"`
}

// LoadBatch returns the messages saved under key in their original order.
func (s *SQLiteStore) LoadBatch(
	ctx context.Context,
	key string,
) ([]model.Message, time.Time, bool, error) {
	var rows []batchRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.id, m.date, m.from_addr, m.subject, m.snippet, m.body, b.saved_at
		FROM message_batches b
		JOIN messages m ON m.id = b.message_id
		WHERE b.cache_key = ?
		ORDER BY b.position`, key)
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("loading batch %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, time.Time{}, false, nil
	}

	msgs := make([]model.Message, len(rows))
	for i, r := range rows {
		msgs[i] = r.Message
	}
	return msgs, rows[0].SavedAt, true, nil
}
