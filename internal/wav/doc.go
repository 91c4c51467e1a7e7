// Package wav performs the cheap precondition checks run before a conversion
// is dispatched: RIFF/WAVE structure, PCM format, supported bit depth, and a
// non-empty data chunk. It never decodes samples.
package wav
