package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/mailtasks/internal/model"
)

// DecodeError indicates that a source could not read or decode its input.
// Missing structural fields are reported as *model.MissingFieldError inside
// Err.
type DecodeError struct {
	SourceType SourceType
	Path       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error (%s) %s: %v", e.SourceType, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err (or any error in its chain) is a
// DecodeError.
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}

// SourceType identifies the kind of message source.
type SourceType string

const (
	SourceTypeEmail SourceType = "email"
	SourceTypeJSON  SourceType = "json"
)

// FetchOptions controls pagination for fetch operations. A PageSize below 1
// returns every message.
type FetchOptions struct {
	Page     int
	PageSize int
}

// FetchResult holds a page of messages returned from a source.
type FetchResult struct {
	Messages []model.Message
	Total    int
	HasMore  bool
}

// Source defines the contract that every message source must implement.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType

	// ValidateConnection verifies the source is readable.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// FetchMessages retrieves a page of messages in source order.
	FetchMessages(ctx context.Context, opts FetchOptions) (*FetchResult, error)
}

// Paginate slices msgs according to opts.
func Paginate(msgs []model.Message, opts FetchOptions) *FetchResult {
	if opts.PageSize < 1 {
		return &FetchResult{Messages: msgs, Total: len(msgs)}
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * opts.PageSize
	if start >= len(msgs) {
		return &FetchResult{Total: len(msgs)}
	}

	end := start + opts.PageSize
	hasMore := false
	if end < len(msgs) {
		hasMore = true
	} else {
		end = len(msgs)
	}

	return &FetchResult{
		Messages: msgs[start:end],
		Total:    len(msgs),
		HasMore:  hasMore,
	}
}

// Validate checks that msg carries a non-empty id, date and sender. A
// subject may be empty but decoders must still see the field present.
func Validate(msg model.Message, record string) error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"id", msg.ID},
		{"date", msg.Date},
		{"from", msg.From},
	} {
		if f.value == "" {
			return &model.MissingFieldError{Record: record, Field: f.name}
		}
	}
	return nil
}
