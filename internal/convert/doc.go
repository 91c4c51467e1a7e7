// Package convert runs WAV conversion attempts end to end. The Orchestrator
// validates the input, dispatches the selected codec back-end on a worker
// goroutine, relays progress in order, classifies the terminal outcome, and
// finalizes the borrowed-beats lifecycle exactly once per attempt.
package convert
