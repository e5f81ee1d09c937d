// Package jsonfile reads messages from a JSON array or JSON-lines dump.
package jsonfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/source"
)

// Adapter implements source.Source for a message dump on disk.
type Adapter struct {
	path   string
	logger *zap.Logger
}

// NewAdapter creates a JSON source reading path.
func NewAdapter(path, sourceID string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		path:   path,
		logger: logger.With(zap.String("source_id", sourceID)),
	}
}

// Type returns the source type identifier for JSON dumps.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeJSON
}

// ValidateConnection checks that the file exists and is a regular file.
func (a *Adapter) ValidateConnection(_ context.Context) (string, error) {
	info, err := os.Stat(a.path)
	if err != nil {
		return "", fmt.Errorf("validating json source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("validating json source: %s is a directory", a.path)
	}
	return fmt.Sprintf("%s (%d bytes)", a.path, info.Size()), nil
}

// FetchMessages decodes the whole file and returns the requested page.
func (a *Adapter) FetchMessages(
	ctx context.Context,
	opts source.FetchOptions,
) (*source.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching json messages: %w", err)
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		return nil, &source.DecodeError{SourceType: source.SourceTypeJSON, Path: a.path, Err: err}
	}

	msgs, err := Decode(data, a.path)
	if err != nil {
		return nil, &source.DecodeError{SourceType: source.SourceTypeJSON, Path: a.path, Err: err}
	}

	a.logger.Debug("decoded json messages", zap.Int("count", len(msgs)))
	return source.Paginate(msgs, opts), nil
}

// record mirrors model.Message with pointer fields so absent keys can be
// told apart from empty values.
type record struct {
	ID      *string `json:"id"`
	Date    *string `json:"date"`
	From    *string `json:"from"`
	Subject *string `json:"subject"`
	Snippet string  `json:"snippet"`
	Body    string  `json:"body"`
}

// Decode parses data as a JSON array of messages or, when it does not start
// with '[', as one JSON object per line. Records missing a required field
// fail with *model.MissingFieldError.
func Decode(data []byte, name string) ([]model.Message, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []model.Message{}, nil
	}

	var records []record
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(trimmed))
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := bytes.TrimSpace(scanner.Bytes())
			if len(text) == 0 {
				continue
			}
			var r record
			if err := json.Unmarshal(text, &r); err != nil {
				return nil, fmt.Errorf("parsing %s line %d: %w", name, line, err)
			}
			records = append(records, r)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}

	msgs := make([]model.Message, 0, len(records))
	for i, r := range records {
		msg, err := r.toMessage(fmt.Sprintf("%s record %d", name, i))
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (r record) toMessage(name string) (model.Message, error) {
	if r.Subject == nil {
		return model.Message{}, &model.MissingFieldError{Record: name, Field: "subject"}
	}
	msg := model.Message{
		ID:      deref(r.ID),
		Date:    deref(r.Date),
		From:    deref(r.From),
		Subject: *r.Subject,
		Snippet: r.Snippet,
		Body:    r.Body,
	}
	if err := source.Validate(msg, name); err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
