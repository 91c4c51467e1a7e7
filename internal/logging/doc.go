// Package logging builds the slog loggers used throughout sonforge.
//
// It provides a console handler for interactive use (level tags colorized
// only when the writer is a terminal), a JSON handler for log files and
// scripting, standardized field keys, and small attr helpers so call sites
// stay terse.
package logging
