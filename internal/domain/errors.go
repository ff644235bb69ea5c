package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure so callers can branch on the
// failure class without inspecting wrapped provider errors.
type ErrorKind string

const (
	// KindValidation means a required input was missing or empty. No side
	// effects were performed.
	KindValidation ErrorKind = "validation"

	// KindStorage means the blob upload failed. No Meme was created.
	KindStorage ErrorKind = "storage"

	// KindTagging means the classifier call failed or returned non-success.
	// No Meme was created.
	KindTagging ErrorKind = "tagging"

	// KindPersistence means the metadata transaction failed after a
	// successful upload and classification.
	KindPersistence ErrorKind = "persistence"

	// KindNotFound means a query matched no rows. It is a valid empty
	// result, not a server failure.
	KindNotFound ErrorKind = "not_found"
)

// PipelineError is the caller-facing error type for the ingest and search
// services. Details carries the original provider error text when one exists.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Details string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a missing or empty required field.
func NewValidationError(message string) error {
	return &PipelineError{Kind: KindValidation, Message: message}
}

// NewStorageError wraps a blob upload failure.
func NewStorageError(message string, err error) error {
	return &PipelineError{Kind: KindStorage, Message: message, Err: err}
}

// NewTaggingError wraps a classifier failure, preserving the provider's raw
// response body in details for diagnostics.
func NewTaggingError(message, details string, err error) error {
	return &PipelineError{Kind: KindTagging, Message: message, Details: details, Err: err}
}

// NewPersistenceError wraps a metadata transaction failure.
func NewPersistenceError(message string, err error) error {
	return &PipelineError{Kind: KindPersistence, Message: message, Err: err}
}

// NewNotFoundError reports an empty query result.
func NewNotFoundError(message string) error {
	return &PipelineError{Kind: KindNotFound, Message: message}
}

// KindOf returns the error's kind, or the empty string for errors that did
// not originate in the pipeline.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// DetailsOf returns the preserved provider error text, if any.
func DetailsOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Details
	}
	return ""
}
