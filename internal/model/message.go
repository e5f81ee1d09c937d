package model

import (
	"strings"
	"time"
)

// Header date layouts accepted from the mail source, tried in order.
const (
	HeaderDateLayout      = "Mon, 2 Jan 2006 15:04:05 -0700"
	HeaderDateLayoutNoDay = "2 Jan 2006 15:04:05 -0700"
)

// Message is a normalized mail record handed to the core by a source.
// It is treated as immutable once fetched.
type Message struct {
	ID      string `json:"id" db:"id"`
	Date    string `json:"date" db:"date"`
	From    string `json:"from" db:"from_addr"`
	Subject string `json:"subject" db:"subject"`

	// Snippet is a short preview of the body; Body holds the full text
	// when the source provides it.
	Snippet string `json:"snippet" db:"snippet"`
	Body    string `json:"body,omitempty" db:"body"`
}

// Text returns the body text used for task inference: the snippet when
// present, otherwise the full body.
func (m Message) Text() string {
	if m.Snippet != "" {
		return m.Snippet
	}
	return m.Body
}

// ParseDate parses the message Date header using the accepted layouts.
func (m Message) ParseDate() (time.Time, bool) {
	return ParseHeaderDate(m.Date)
}

// ParseHeaderDate parses s with each accepted header layout in turn.
func ParseHeaderDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{HeaderDateLayout, HeaderDateLayoutNoDay} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
