package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/crossconveyor/internal/errors"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "simulation.feeds_per_belt")
	Value   any    // The invalid value
	Message string // Human-readable error description

	// Severity is zero (warning) unless the problem makes the topology unrunnable.
	Severity errors.Severity
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Severity returns the most serious entry's severity.
func (e ValidationErrors) Severity() errors.Severity {
	worst := errors.SeverityWarning
	for _, v := range e {
		worst = max(worst, v.Severity)
	}
	return worst
}

// IsUserFacing reports true: every entry names a config field.
func (e ValidationErrors) IsUserFacing() bool { return true }

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"text", "json", "yaml"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	errs = append(errs, c.validateConveyor()...)
	errs = append(errs, c.validateSimulation()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateOutput()...)

	return errs
}

// validateConveyor runs topology validation and maps each problem onto the
// config field it came from.
func (c *Config) validateConveyor() []ValidationError {
	err := c.Conveyor.Topology().Validate()
	if err == nil {
		return nil
	}

	problems := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		problems = joined.Unwrap()
	}

	out := make([]ValidationError, 0, len(problems))
	for _, p := range problems {
		out = append(out, topologyProblem(p))
	}
	return out
}

func topologyProblem(err error) ValidationError {
	var bounds *errors.BoundsError
	if errors.As(err, &bounds) {
		return ValidationError{
			Field:    "conveyor.intersections",
			Value:    bounds.Position,
			Message:  fmt.Sprintf("does not fit on belt %q of capacity %d", bounds.Belt, bounds.Capacity),
			Severity: bounds.Severity(),
		}
	}

	var exists *errors.AlreadyExistsError
	if errors.As(err, &exists) {
		field := "conveyor.belts"
		if errors.Is(err, errors.ErrDuplicateIntersection) {
			field = "conveyor.intersections"
		}
		return ValidationError{
			Field:   field,
			Value:   exists.ResourceID,
			Message: "is duplicated",
		}
	}

	var invalid *errors.ValidationError
	if errors.As(err, &invalid) {
		return ValidationError{
			Field:   "conveyor." + invalid.Field,
			Value:   invalid.Value,
			Message: invalid.Message(),
		}
	}

	return ValidationError{Field: "conveyor", Message: err.Error()}
}

// validateSimulation validates the SimulationConfig
func (c *Config) validateSimulation() []ValidationError {
	var errs []ValidationError

	if c.Simulation.FeedsPerBelt <= 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.feeds_per_belt",
			Value:   c.Simulation.FeedsPerBelt,
			Message: "must be positive",
		})
	}

	if c.Simulation.DriversPerBelt <= 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.drivers_per_belt",
			Value:   c.Simulation.DriversPerBelt,
			Message: "must be positive",
		})
	} else if c.Simulation.DriversPerBelt > 1 && !c.Conveyor.SerializeBelts {
		errs = append(errs, ValidationError{
			Field:   "simulation.drivers_per_belt",
			Value:   c.Simulation.DriversPerBelt,
			Message: "more than one driver per belt requires conveyor.serialize_belts",
		})
	}

	if c.Simulation.MaxGoroutines < 0 {
		errs = append(errs, ValidationError{
			Field:   "simulation.max_goroutines",
			Value:   c.Simulation.MaxGoroutines,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	return errs
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Zero keeps a single unrotated file.
	if c.Logging.MaxSizeMB < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errs
}

// validateOutput validates the OutputConfig
func (c *Config) validateOutput() []ValidationError {
	var errs []ValidationError

	if c.Output.Format != "" && !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}

	// Truncation needs room for at least one character and the ellipsis.
	if c.Output.MaxValueWidth < 4 {
		errs = append(errs, ValidationError{
			Field:   "output.max_value_width",
			Value:   c.Output.MaxValueWidth,
			Message: "must be at least 4",
		})
	}

	return errs
}
