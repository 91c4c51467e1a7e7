// Package notifications delivers push notifications through ntfy for
// conversion and beat-borrowing events.
package notifications
