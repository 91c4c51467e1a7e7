// Package options resolves raw control state into a canonical encoding
// configuration. Resolution is pure and total: bad input is clamped to safe
// defaults rather than rejected, and cross-field constraints (four-channel is
// SON-only) are enforced here so nothing downstream needs to re-check them.
package options
