package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is wrapped by every InputError.
	ErrInvalidRecord = errors.New("invalid research record")

	// ErrAlreadyFinished is returned when a builder is used after Finish.
	ErrAlreadyFinished = errors.New("document already finished")
)

// InputError reports a payload that could not be decoded or validated.
// Nothing is rendered or written when an InputError is returned.
type InputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", ErrInvalidRecord, e.Field, e.Reason, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", ErrInvalidRecord, e.Field, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrInvalidRecord, e.Reason, e.Err)
	default:
		return fmt.Sprintf("%s: %s", ErrInvalidRecord, e.Reason)
	}
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *InputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRecord}
	}
	return []error{ErrInvalidRecord, e.Err}
}

// RenderError is a terminal failure while laying out, serializing or writing
// a document.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
