package testsupport

import (
	"path/filepath"
	"testing"

	"sonforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Paths.BeatsCache = filepath.Join(base, "beats.json")
	cfgVal.Paths.LockFilePath = filepath.Join(base, "sonforge.lock")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure config directories: %v", err)
	}

	return builder.cfg
}

// WithDSPBinary overrides the DSP encoder binary on the test config.
func WithDSPBinary(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.DSPBinary = binary
	}
}

// WithOGGBinary overrides the OGG encoder binary on the test config.
func WithOGGBinary(binary string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tools.OGGBinary = binary
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}
