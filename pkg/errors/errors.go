package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeInternal   ErrorType = "INTERNAL"

	// Publication pipeline error types
	ErrorTypeFetch         ErrorType = "FETCH"          // authoritative record unreadable
	ErrorTypeArtifactWrite ErrorType = "ARTIFACT_WRITE" // blob write failed, artifact state unchanged
	ErrorTypePartialSync   ErrorType = "PARTIAL_SYNC"   // artifact written, index regeneration failed
	ErrorTypeUpstreamFetch ErrorType = "UPSTREAM_FETCH" // resolver lookup call failed, distinct from absence
)

// StaleCacheWarning signals a cache read past its TTL that is still being
// served optimistically pending refresh. It is advisory, never fatal.
var StaleCacheWarning = errors.New("cache entry is stale, refresh pending")

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error

	// Context for manual retry of publication work: which item,
	// which slug, and which stage of the pipeline failed.
	ItemID string
	Slug   string
	Stage  string
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Slug != "" || e.Stage != "" {
		msg = fmt.Sprintf("%s (item=%s slug=%s stage=%s)", msg, e.ItemID, e.Slug, e.Stage)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext attaches item/slug/stage context for retry reporting.
func (e *AppError) WithContext(itemID, slug, stage string) *AppError {
	e.ItemID = itemID
	e.Slug = slug
	e.Stage = stage
	return e
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewFetch creates a fetch error for an unreadable authoritative record
func NewFetch(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeFetch,
		Message: message,
		Err:     err,
	}
}

// NewArtifactWrite creates an artifact write error
func NewArtifactWrite(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeArtifactWrite,
		Message: message,
		Err:     err,
	}
}

// NewPartialSync creates a partial sync error. The artifact mutation
// succeeded; only the index regeneration needs a retry.
func NewPartialSync(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypePartialSync,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamFetch creates an upstream fetch error for a lookup call that
// itself failed. Never used to signal that content does not exist.
func NewUpstreamFetch(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUpstreamFetch,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
			ItemID:  appErr.ItemID,
			Slug:    appErr.Slug,
			Stage:   appErr.Stage,
		}
	}

	// Otherwise, create an internal error
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return isType(err, ErrorTypeInternal)
}

// IsFetch checks if an error is a fetch error
func IsFetch(err error) bool {
	return isType(err, ErrorTypeFetch)
}

// IsArtifactWrite checks if an error is an artifact write error
func IsArtifactWrite(err error) bool {
	return isType(err, ErrorTypeArtifactWrite)
}

// IsPartialSync checks if an error is a partial sync error
func IsPartialSync(err error) bool {
	return isType(err, ErrorTypePartialSync)
}

// IsUpstreamFetch checks if an error is an upstream fetch error
func IsUpstreamFetch(err error) bool {
	return isType(err, ErrorTypeUpstreamFetch)
}

// IsStale checks if an error carries the stale cache warning
func IsStale(err error) bool {
	return errors.Is(err, StaleCacheWarning)
}
