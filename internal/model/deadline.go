package model

import "time"

// DeadlineResult is the single best deadline resolved from a text span.
// Confidence is zero exactly when Date is nil, and Context is empty exactly
// when no date was found.
type DeadlineResult struct {
	Date       *time.Time `json:"date,omitempty"`
	Confidence float64    `json:"confidence"`
	Context    string     `json:"context"`
}

// Found reports whether a deadline was resolved.
func (d DeadlineResult) Found() bool {
	return d.Date != nil
}
