// Package history persists conversion attempts to a SQLite database so the
// CLI can show what was converted, with which options, and how it ended.
// Attempts are inserted when a conversion starts and updated exactly once
// with the terminal outcome.
package history
