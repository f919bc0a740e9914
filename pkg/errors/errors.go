package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the kinds of failure a labeling session can hit
type ErrorType string

const (
	// ErrorTypeConfig covers a missing, malformed or incomplete binding file
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeConfiguration covers inputs that make a session impossible, such as an empty image sequence
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeCorruptSequence means an image in the sequence no longer parses as an id
	ErrorTypeCorruptSequence ErrorType = "corrupt_sequence"
	// ErrorTypeIO covers record and checkpoint file failures
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeLocked means another session holds the output lock
	ErrorTypeLocked ErrorType = "locked"
)

// Error is an error with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// Config is shorthand for a config error
func Config(format string, args ...interface{}) *Error {
	return New(ErrorTypeConfig, fmt.Sprintf(format, args...))
}

// IsType reports whether any error in err's chain is an *Error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}
