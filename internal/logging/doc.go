// Package logging provides structured logging for crossconveyor.
//
// It wraps Go's log/slog with a JSON handler and adds persistent context
// attributes so every line emitted while driving a belt can be traced back to
// its run and belt.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/crossconveyor", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithRun(runID).WithBelt("conveyor1").Debug("belt advanced", "evicted", v)
//
// Passing an empty directory writes to stderr instead of a file.
//
// # Log Rotation
//
// Long simulations can produce a lot of debug output. [NewLoggerWithRotation]
// backs the logger with a [RotatingWriter] that renames crossconveyor.log to
// crossconveyor.log.1 once it reaches MaxSizeMB, keeping MaxBackups older
// files and optionally gzipping them.
//
// # Testing
//
// Use [NopLogger] to discard output.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package logging
