package core

import (
	"fmt"

	"sdpix/pkg/document"
)

// ExtractionError is a fatal violation found while walking a document. It
// aborts the whole conversion.
type ExtractionError struct {
	Location document.Location
	Message  string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Location, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Fatalf builds an ExtractionError at loc.
func Fatalf(loc document.Location, format string, args ...any) *ExtractionError {
	return &ExtractionError{Location: loc, Message: fmt.Sprintf(format, args...)}
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// LockError represents a file locking error.
type LockError struct {
	Operation string
	Message   string
	Err       error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("lock %s: %s", e.Operation, e.Message)
}

func (e *LockError) Unwrap() error {
	return e.Err
}

// ExportError represents a failure writing or reading an artifact.
type ExportError struct {
	Artifact string
	Message  string
	Err      error
}

func (e *ExportError) Error() string {
	if e.Artifact != "" {
		return fmt.Sprintf("artifact %s: %s", e.Artifact, e.Message)
	}
	return fmt.Sprintf("artifact: %s", e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
