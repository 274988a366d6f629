package service

import (
	"errors"
	"fmt"
)

// ErrNoGenerator is returned when a ContentProcessingService is built without
// a content generator.
var ErrNoGenerator = errors.New("content generator is required")

// errEmptyResult marks a model answer that was returned without error but
// carries nothing usable.
var errEmptyResult = errors.New("empty result")

// IngestError is a custom error type for failures that abort an ingestion run.
type IngestError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for IngestError.
func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("ingest %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// NewIngestError creates a new IngestError.
func NewIngestError(operation, message string, err error) *IngestError {
	return &IngestError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
