package domain

import (
	"errors"
	"fmt"
)

// Validation error codes shared across handlers and services.
const (
	CodeRequired                  = "empty"
	CodeExistingBookings          = "existingBookings"
	CodeExistingVoid              = "existingVoid"
	CodeExistingTurnaround        = "existingTurnaround"
	CodeInvalidEndDateInThePast   = "invalidEndDateInThePast"
	CodeInvalidEndDateInTheFuture = "invalidEndDateInTheFuture"
	CodeNoScheduledArchive        = "noScheduledArchive"
	CodeNoScheduledUnarchive      = "noScheduledUnarchive"
	CodeOverstayNotAuthorised     = "overstayNotAuthorised"
)

// ValidationError is a recoverable, field-scoped domain validation failure.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s (%s): %s", e.Field, e.Code, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError with a message only.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a ValidationError scoped to a field with a machine-readable code.
func NewFieldValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// InvalidStateError indicates a lifecycle transition that is not permitted
// from the current status.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

// NotFoundError indicates a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictKind distinguishes what a ConflictError reports.
type ConflictKind string

const (
	// ConflictVersion is an optimistic-lock failure: the record changed
	// under the caller and the operation must be retried.
	ConflictVersion ConflictKind = "version"
	// ConflictDates is a date clash reported by the store. Detail carries
	// the raw backend message so it can be classified for user-facing
	// messaging.
	ConflictDates ConflictKind = "dates"
)

// ConflictError indicates the backing record was modified concurrently, or a
// date clash reported by the store; Kind says which.
type ConflictError struct {
	Kind   ConflictKind
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Detail)
}

// NewVersionConflictError creates a ConflictError for an optimistic-lock
// failure.
func NewVersionConflictError(detail string) *ConflictError {
	return &ConflictError{Kind: ConflictVersion, Detail: detail}
}

// NewDateConflictError creates a ConflictError for a date clash.
func NewDateConflictError(detail string) *ConflictError {
	return &ConflictError{Kind: ConflictDates, Detail: detail}
}

// BlockedError indicates an archive operation refused because a booking or
// void extends past the candidate date. It is surfaced as a distinct
// "cannot proceed" state, not as a field validation error.
type BlockedError struct {
	BlockingDate            string
	BlockingEntityID        string
	BlockingEntityReference string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by %s until %s", e.BlockingEntityReference, e.BlockingDate)
}

// NewBlockedError creates a BlockedError.
func NewBlockedError(blockingDate, entityID, entityReference string) *BlockedError {
	return &BlockedError{
		BlockingDate:            blockingDate,
		BlockingEntityID:        entityID,
		BlockingEntityReference: entityReference,
	}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsBlocked reports whether err is a BlockedError.
func IsBlocked(err error) bool {
	var be *BlockedError
	return errors.As(err, &be)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
