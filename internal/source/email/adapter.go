package email

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/cache"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/source"
)

const (
	// snippetRunes caps the body preview carried on each message.
	snippetRunes = 200

	defaultPattern = "*.eml"
)

// Adapter implements source.Source for a directory of RFC 5322 .eml files.
type Adapter struct {
	dir      string
	pattern  string
	sourceID string
	cache    cache.MessageCache
	logger   *zap.Logger
}

// NewAdapter creates an email source reading files matching pattern in dir.
// An empty pattern reads "*.eml". A nil cache disables memoization.
func NewAdapter(
	dir, pattern string,
	sourceID string,
	c cache.MessageCache,
	logger *zap.Logger,
) *Adapter {
	if pattern == "" {
		pattern = defaultPattern
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("source_id", sourceID))
	return &Adapter{
		dir:      dir,
		pattern:  pattern,
		sourceID: sourceID,
		cache:    c,
		logger:   logger,
	}
}

// Type returns the source type identifier for Email.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeEmail
}

// ValidateConnection checks that the directory exists and reports how many
// message files it holds.
func (a *Adapter) ValidateConnection(_ context.Context) (string, error) {
	info, err := os.Stat(a.dir)
	if err != nil {
		return "", fmt.Errorf("validating email source: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("validating email source: %s is not a directory", a.dir)
	}

	files, err := a.files()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d message files in %s", len(files), a.dir), nil
}

// FetchMessages decodes every matching file in name order and returns the
// requested page. Messages already in the cache are not decoded again.
func (a *Adapter) FetchMessages(
	ctx context.Context,
	opts source.FetchOptions,
) (*source.FetchResult, error) {
	files, err := a.files()
	if err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetching email messages: %w", err)
		}

		msg, err := a.readFile(ctx, path)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	return source.Paginate(msgs, opts), nil
}

func (a *Adapter) files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(a.dir, a.pattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", a.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// readFile decodes one message file, consulting the cache by Message-ID
// before reading the body.
func (a *Adapter) readFile(ctx context.Context, path string) (model.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Message{}, &source.DecodeError{
			SourceType: source.SourceTypeEmail, Path: path, Err: err,
		}
	}
	defer f.Close()

	mr, err := mail.CreateReader(f)
	if err != nil && !message.IsUnknownCharset(err) {
		return model.Message{}, &source.DecodeError{
			SourceType: source.SourceTypeEmail, Path: path, Err: err,
		}
	}
	defer mr.Close()

	msg, err := headerToMessage(mr.Header, path)
	if err != nil {
		return model.Message{}, &source.DecodeError{
			SourceType: source.SourceTypeEmail, Path: path, Err: err,
		}
	}

	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, msg.ID)
		if err != nil {
			return model.Message{}, fmt.Errorf("reading message cache: %w", err)
		}
		if ok {
			a.logger.Debug("message cache hit", zap.String("message_id", msg.ID))
			return cached, nil
		}
	}

	textBody, htmlBody := parseMIMEBody(mr)
	body := textBody
	if body == "" && htmlBody != "" {
		body = stripHTML(htmlBody)
	}
	msg.Body = strings.TrimSpace(body)
	msg.Snippet = snippet(msg.Body, snippetRunes)

	if a.cache != nil {
		if err := a.cache.Put(ctx, msg); err != nil {
			return model.Message{}, fmt.Errorf("writing message cache: %w", err)
		}
	}
	return msg, nil
}

// headerToMessage maps the RFC 5322 header onto a Message. The date is
// re-rendered in the canonical header layout when it parses, and kept
// verbatim otherwise.
func headerToMessage(h mail.Header, record string) (model.Message, error) {
	id, err := h.MessageID()
	if err != nil || id == "" {
		return model.Message{}, &model.MissingFieldError{Record: record, Field: "id"}
	}

	var msg model.Message
	msg.ID = id

	msg.Date = strings.TrimSpace(h.Get("Date"))
	if t, err := h.Date(); err == nil && msg.Date != "" {
		msg.Date = t.Format(model.HeaderDateLayout)
	}

	if from, err := h.Text("From"); err == nil {
		msg.From = strings.TrimSpace(from)
	} else {
		msg.From = strings.TrimSpace(h.Get("From"))
	}

	if !h.Has("Subject") {
		return model.Message{}, &model.MissingFieldError{Record: record, Field: "subject"}
	}
	if subject, err := h.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = h.Get("Subject")
	}

	if err := source.Validate(msg, record); err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// parseMIMEBody walks the message parts and returns the first text/plain
// and text/html bodies. Attachments are skipped.
func parseMIMEBody(mr *mail.Reader) (textBody, htmlBody string) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain") && textBody == "":
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
			htmlBody = string(body)
		case contentType == "" && textBody == "":
			textBody = string(body)
		}
	}

	return textBody, htmlBody
}

// snippet collapses whitespace in s and truncates it to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
