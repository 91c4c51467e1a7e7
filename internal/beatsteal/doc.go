// Package beatsteal owns the borrowed beat-marker lifecycle: load markers
// from an existing container, hold at most one set, hand it to a conversion,
// and be cleared exactly once afterwards. The manager is safe for concurrent
// use by the UI surface and the conversion orchestrator.
package beatsteal
