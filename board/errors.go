package board

import "errors"

// ErrIndexOutOfRange is returned when a vote names an option index outside
// the poll's option list.
var ErrIndexOutOfRange = errors.New("option index out of range")

// ErrNotPoll is returned when a poll-only operation targets an item of a
// different type.
var ErrNotPoll = errors.New("item is not a poll")

// ValidationError reports missing or insufficient input on a submission.
// State is left unchanged when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErr(reason string) error {
	return &ValidationError{Reason: reason}
}
