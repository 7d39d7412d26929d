package errors

import (
	"errors"
	"fmt"
	"testing"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// BoundsError Tests
// -----------------------------------------------------------------------------

func TestNewBoundsError(t *testing.T) {
	err := NewBoundsError("conveyor1", 7, 5)

	if err.Belt != "conveyor1" {
		t.Errorf("Belt = %q, want %q", err.Belt, "conveyor1")
	}
	if err.Position != 7 || err.Capacity != 5 {
		t.Errorf("Position, Capacity = %d, %d, want 7, 5", err.Position, err.Capacity)
	}
	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}

	want := "bounds error [belt=conveyor1]: position 7 outside [0, 5)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestBoundsError_Is(t *testing.T) {
	err := NewBoundsError("b", 3, 2)

	if !errors.Is(err, ErrPositionOutOfRange) {
		t.Error("errors.Is(err, ErrPositionOutOfRange) = false, want true")
	}
	if !errors.Is(err, &BoundsError{}) {
		t.Error("errors.Is(err, &BoundsError{}) = false, want true")
	}
	if errors.Is(err, ErrBeltNotFound) {
		t.Error("errors.Is(err, ErrBeltNotFound) = true, want false")
	}

	wrapped := fmt.Errorf("feed: %w", err)
	var bounds *BoundsError
	if !errors.As(wrapped, &bounds) {
		t.Fatal("errors.As() failed for wrapped BoundsError")
	}
	if bounds.Position != 3 {
		t.Errorf("Position = %d, want 3", bounds.Position)
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("belt", "conveyor9").WithCause(ErrBeltNotFound)

	if got, want := err.Error(), "belt 'conveyor9' not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrBeltNotFound) {
		t.Error("errors.Is(err, ErrBeltNotFound) = false, want true")
	}
	if !errors.Is(err, &NotFoundError{}) {
		t.Error("errors.Is(err, &NotFoundError{}) = false, want true")
	}
	if errors.Is(err, ErrIntersectionNotFound) {
		t.Error("errors.Is(err, ErrIntersectionNotFound) = true, want false")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("intersection", "3").WithCause(ErrDuplicateIntersection)

	if got, want := err.Error(), "intersection '3' already exists"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrDuplicateIntersection) {
		t.Error("errors.Is(err, ErrDuplicateIntersection) = false, want true")
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "message only",
			err:  NewValidationError("bad"),
			want: "validation error: bad",
		},
		{
			name: "field and value",
			err:  NewValidationError("must be non-negative").WithField("capacity").WithValue(-1),
			want: "validation error [field=capacity, value=-1]: must be non-negative",
		},
		{
			name: "with cause",
			err:  NewValidationError("bad belt").WithCause(ErrDuplicateBelt),
			want: "validation error: bad belt: duplicate belt name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := NewValidationError("x")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("errors.Is(err, ErrInvalidInput) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Helper Tests
// -----------------------------------------------------------------------------

// reportedError stands in for an error type from another package that
// classifies itself without embedding baseError.
type reportedError struct{ severity Severity }

func (e reportedError) Error() string { return "reported" }
func (e reportedError) Severity() Severity { return e.severity }
func (e reportedError) IsUserFacing() bool { return true }

func TestClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		userFacing bool
		severity   Severity
	}{
		{"nil", nil, false, SeverityError},
		{"plain", New("boom"), false, SeverityError},
		{"wrapped plain", fmt.Errorf("open: %w", New("permission denied")), false, SeverityError},
		{"not found", NewNotFoundError("belt", "x"), true, SeverityWarning},
		{"already exists", NewAlreadyExistsError("belt", "x"), true, SeverityWarning},
		{"wrapped bounds", Wrap(NewBoundsError("b", 1, 0), "advance"), true, SeverityCritical},
		{"validation", NewValidationError("v"), true, SeverityWarning},
		{"joined", Join(NewBoundsError("b", 4, 2), NewValidationError("v")), true, SeverityCritical},
		{"foreign classified", fmt.Errorf("load: %w", reportedError{SeverityWarning}), true, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.userFacing {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.userFacing)
			}
			if got := GetSeverity(tt.err); got != tt.severity {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.severity)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	err := Wrapf(ErrBeltNotFound, "feed %q", "a")
	if got, want := err.Error(), `feed "a": belt not found`; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrBeltNotFound) {
		t.Error("wrapped error should match ErrBeltNotFound")
	}
}

func TestMessage(t *testing.T) {
	err := NewValidationError("must be non-negative").WithField("capacity").WithValue(-1)
	if got := err.Message(); got != "must be non-negative" {
		t.Errorf("Message() = %q, want %q", got, "must be non-negative")
	}
}
