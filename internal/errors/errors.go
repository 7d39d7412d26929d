// Package errors defines the sentinel and typed errors returned by the
// conveyor runtime and its configuration, plus the classification the CLI uses
// to decide how a failure is reported.
//
// Lookup failures are NotFoundError, duplicate registrations are
// AlreadyExistsError, and malformed input is ValidationError. An intersection
// that does not fit on a belt is a BoundsError, which is critical: the
// topology can never be fed.
//
//	if errors.Is(err, errors.ErrBeltNotFound) { ... }
//
//	var bounds *errors.BoundsError
//	if errors.As(err, &bounds) { ... }
//
// The topology is fixed after setup, so nothing here is worth retrying.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard library helpers, re-exported so callers need only this package.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Severity ranks how serious a failure is for the person running a command.
type Severity int

const (
	// SeverityWarning is bad input the user can correct.
	SeverityWarning Severity = iota
	// SeverityError is a failure outside the user's input, such as I/O.
	SeverityError
	// SeverityCritical is a topology that cannot run at all.
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	ErrBeltNotFound          = New("belt not found")
	ErrIntersectionNotFound  = New("intersection not found")
	ErrPositionOutOfRange    = New("intersection position out of range")
	ErrDuplicateBelt         = New("duplicate belt name")
	ErrDuplicateIntersection = New("duplicate intersection position")
	ErrInvalidInput          = New("invalid input")
)

// -----------------------------------------------------------------------------
// Shared Base
// -----------------------------------------------------------------------------

// baseError carries what every typed error has in common.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Message returns the bare message, without cause or field context.
func (e *baseError) Message() string { return e.message }

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) Is(target error) bool {
	return e.cause != nil && errors.Is(e.cause, target)
}

// Severity returns how serious the error is.
func (e *baseError) Severity() Severity { return e.severity }

// IsUserFacing reports whether the message can be shown as is.
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Bounds
// -----------------------------------------------------------------------------

// BoundsError is an intersection position that does not index into a belt's
// slots. It matches ErrPositionOutOfRange.
//
//	errors.NewBoundsError("conveyor1", 7, 5)
//	// bounds error [belt=conveyor1]: position 7 outside [0, 5)
type BoundsError struct {
	baseError
	Belt     string
	Position int
	Capacity int
}

// NewBoundsError reports position as unusable on a belt of capacity slots.
func NewBoundsError(belt string, position, capacity int) *BoundsError {
	return &BoundsError{
		baseError: baseError{
			message:    fmt.Sprintf("position %d outside [0, %d)", position, capacity),
			cause:      ErrPositionOutOfRange,
			severity:   SeverityCritical,
			userFacing: true,
		},
		Belt:     belt,
		Position: position,
		Capacity: capacity,
	}
}

func (e *BoundsError) Error() string {
	if e.Belt == "" {
		return "bounds error: " + e.message
	}
	return fmt.Sprintf("bounds error [belt=%s]: %s", e.Belt, e.message)
}

func (e *BoundsError) Is(target error) bool {
	if _, ok := target.(*BoundsError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Lookup and Registration
// -----------------------------------------------------------------------------

// NotFoundError is a belt or intersection that was never registered.
//
//	errors.NewNotFoundError("belt", "conveyor9") // belt 'conveyor9' not found
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError reports resourceID of kind resourceType as unknown.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause sets the sentinel the error matches.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Error() string { return e.message }

func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError is a belt name or intersection position registered twice.
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError reports resourceID of kind resourceType as a duplicate.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause sets the sentinel the error matches.
func (e *AlreadyExistsError) WithCause(cause error) *AlreadyExistsError {
	e.cause = cause
	return e
}

func (e *AlreadyExistsError) Error() string { return e.message }

func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

// ValidationError is malformed topology input. It always matches
// ErrInvalidInput.
//
//	errors.NewValidationError("belt capacity must be non-negative").
//	    WithField("belts[0].capacity").
//	    WithValue(-1)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError returns a ValidationError with message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField names the offending input.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause sets an underlying error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var context []string
	if e.Field != "" {
		context = append(context, "field="+e.Field)
	}
	if e.Value != nil {
		context = append(context, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(context) > 0 {
		prefix += " [" + strings.Join(context, ", ") + "]"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return prefix + ": " + e.message
}

func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// classified is satisfied by every error in this package and by anything else
// that wants to control how the CLI reports it.
type classified interface {
	error
	Severity() Severity
	IsUserFacing() bool
}

// IsUserFacing reports whether err, or an error it wraps, says its message is
// meant for the user. Unclassified errors are not.
func IsUserFacing(err error) bool {
	var c classified
	return err != nil && As(err, &c) && c.IsUserFacing()
}

// GetSeverity returns the severity of the first classified error in err's
// chain, or SeverityError when there is none.
func GetSeverity(err error) Severity {
	var c classified
	if err != nil && As(err, &c) {
		return c.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Wrapping
// -----------------------------------------------------------------------------

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
