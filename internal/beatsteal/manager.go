package beatsteal

import (
	"log/slog"
	"path/filepath"
	"sync"

	"sonforge/internal/logging"
)

// BorrowedBeats is a beat-marker set lifted from an existing container,
// reusable as custom-beats input for one conversion.
type BorrowedBeats struct {
	SourceFileName string
	Markers        []uint32
}

// BeatCount returns the number of markers in the payload.
func (b BorrowedBeats) BeatCount() int {
	return len(b.Markers)
}

// Extractor reads beat markers out of an existing container file.
type Extractor func(path string) ([]uint32, error)

// Manager holds at most one borrowed beat-marker set. Loading always
// replaces; a conversion that starts while a payload is loaded consumes it,
// and the orchestrator clears the manager afterwards regardless of outcome.
type Manager struct {
	mu      sync.Mutex
	payload *BorrowedBeats
	extract Extractor
	logger  *slog.Logger
}

// NewManager constructs an empty manager using the given extractor.
func NewManager(extract Extractor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		extract: extract,
		logger:  logging.WithComponent(logger, "beatsteal"),
	}
}

// TryLoadFrom extracts beat markers from the file at path. A positive count
// loads (replacing any prior payload) and is returned; zero markers or an
// extraction error leaves the manager empty and returns 0. It never fails the
// caller.
func (m *Manager) TryLoadFrom(path string) int {
	markers, err := m.extract(path)
	if err != nil {
		m.logger.Debug("beat extraction failed",
			logging.String("path", path),
			logging.Error(err),
		)
		markers = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(markers) == 0 {
		m.payload = nil
		return 0
	}
	m.payload = &BorrowedBeats{
		SourceFileName: filepath.Base(path),
		Markers:        markers,
	}
	m.logger.Info("beats borrowed",
		logging.String("source", m.payload.SourceFileName),
		logging.Int("beat_count", len(markers)),
	)
	return len(markers)
}

// Restore seeds the manager with a previously borrowed payload, replacing any
// current one. Payloads with no markers leave the manager empty.
func (m *Manager) Restore(payload BorrowedBeats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(payload.Markers) == 0 {
		m.payload = nil
		return
	}
	copied := payload
	copied.Markers = append([]uint32(nil), payload.Markers...)
	m.payload = &copied
}

// Peek returns a copy of the loaded payload without mutating the manager.
func (m *Manager) Peek() (BorrowedBeats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return BorrowedBeats{}, false
	}
	copied := *m.payload
	copied.Markers = append([]uint32(nil), m.payload.Markers...)
	return copied, true
}

// Clear unconditionally transitions the manager to empty. Idempotent.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
}

// HasPayload reports whether a borrowed beat set is currently loaded.
func (m *Manager) HasPayload() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payload != nil
}
