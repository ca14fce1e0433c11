package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeEmbedding represents embedding service errors
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeGeneration represents text generation service errors
	ErrorTypeGeneration ErrorType = "generation"
	// ErrorTypeInput represents invalid caller input
	ErrorTypeInput ErrorType = "input"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrOwnerNotFound is returned when an owner cannot be resolved in the graph
type ErrOwnerNotFound struct {
	*BaseError
	OwnerID string
}

func NewOwnerNotFound(ownerID string) *ErrOwnerNotFound {
	return &ErrOwnerNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("owner not found: %s", ownerID), nil),
		OwnerID:   ownerID,
	}
}

// Unwrap exposes the embedded base so errors.As can reach its type tag
func (e *ErrOwnerNotFound) Unwrap() error { return e.BaseError }

// ErrStoreUnavailable is returned when the graph store cannot be reached at all
type ErrStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewStoreUnavailable(operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("graph store unavailable during %s", operation), err),
		Operation: operation,
	}
}

func (e *ErrStoreUnavailable) Unwrap() error { return e.BaseError }

// ErrGraphQueryFailed is returned when a single graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, "query failed", err),
		Query:     query,
	}
}

func (e *ErrGraphQueryFailed) Unwrap() error { return e.BaseError }

// Embedding Errors

// ErrEmbeddingUnavailable is returned when the embedding service call fails.
// Fatal to the query that needed the vector; never retried mid-request.
type ErrEmbeddingUnavailable struct {
	*BaseError
	Model string
}

func NewEmbeddingUnavailable(model string, err error) *ErrEmbeddingUnavailable {
	return &ErrEmbeddingUnavailable{
		BaseError: NewBaseError(ErrorTypeEmbedding, "embedding service unavailable", err),
		Model:     model,
	}
}

func (e *ErrEmbeddingUnavailable) Unwrap() error { return e.BaseError }

// Generation Errors

// ErrGenerationFailed is returned when the text generation call fails
type ErrGenerationFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewGenerationFailed(model string, attempts int, err error) *ErrGenerationFailed {
	return &ErrGenerationFailed{
		BaseError: NewBaseError(ErrorTypeGeneration, fmt.Sprintf("generation failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

func (e *ErrGenerationFailed) Unwrap() error { return e.BaseError }

// ErrGenerationEmpty is returned when the generation service returns no choices
var ErrGenerationEmpty = NewBaseError(ErrorTypeGeneration, "no choices in generation response", nil)

// Input Errors

// ErrInvalidInput is returned when caller input fails validation before any
// external call is made
type ErrInvalidInput struct {
	*BaseError
	Field string
}

func NewInvalidInput(field, reason string) *ErrInvalidInput {
	return &ErrInvalidInput{
		BaseError: NewBaseError(ErrorTypeInput, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
	}
}

func (e *ErrInvalidInput) Unwrap() error { return e.BaseError }

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

func (e *ErrConfigMissingRequired) Unwrap() error { return e.BaseError }

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var base *BaseError
	if errors.As(err, &base) {
		return base.Type == errType
	}
	return false
}

// IsOwnerNotFound reports whether err is an owner resolution failure
func IsOwnerNotFound(err error) bool {
	var target *ErrOwnerNotFound
	return errors.As(err, &target)
}

// IsStoreUnavailable reports whether err is a total store outage
func IsStoreUnavailable(err error) bool {
	var target *ErrStoreUnavailable
	return errors.As(err, &target)
}

// IsEmbeddingUnavailable reports whether err is an embedding service failure
func IsEmbeddingUnavailable(err error) bool {
	var target *ErrEmbeddingUnavailable
	return errors.As(err, &target)
}

// IsInvalidInput reports whether err is a caller input validation failure
func IsInvalidInput(err error) bool {
	var target *ErrInvalidInput
	return errors.As(err, &target)
}
