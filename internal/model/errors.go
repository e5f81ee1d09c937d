package model

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when a task lookup matches nothing.
var ErrTaskNotFound = errors.New("task not found")

// MissingFieldError reports a record that lacks a structurally required
// field. It signals a broken collaborator contract, not bad content.
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q in %s", e.Field, e.Record)
}

// IsMissingField reports whether err (or any error in its chain) is a
// MissingFieldError.
func IsMissingField(err error) bool {
	var mfErr *MissingFieldError
	return errors.As(err, &mfErr)
}
