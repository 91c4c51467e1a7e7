// Package preflight verifies the runtime environment before conversions run:
// directory access, free space, encoder binaries, and notification
// reachability.
package preflight
