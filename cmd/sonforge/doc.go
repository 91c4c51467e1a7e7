// Package main hosts the sonforge CLI entrypoint and command graph.
//
// The Cobra-based command tree covers one-shot conversions, beat borrowing,
// conversion history, environment checks, configuration scaffolding, and the
// interactive terminal interface. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
