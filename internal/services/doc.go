// Package services defines shared utilities consumed by the conversion
// orchestrator and the external codec integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so failures carry enough
//     context to be classified into a terminal conversion outcome.
//   - Context helpers that stamp attempt identifiers for logging.
//
// Use these helpers when wiring new collaborator logic so error handling and
// observability stay uniform across the codec back-ends.
package services
