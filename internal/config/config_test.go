package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sonforge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, "sonforge", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.HistoryDB != filepath.Join(tempHome, ".local", "share", "sonforge", "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.Defaults.SampleRate != 32000 {
		t.Fatalf("unexpected default sample rate: %d", cfg.Defaults.SampleRate)
	}
	if cfg.Defaults.Format != "sns" {
		t.Fatalf("unexpected default format: %q", cfg.Defaults.Format)
	}
	if cfg.DSPBinary() != "dspenc" {
		t.Fatalf("unexpected dsp binary: %q", cfg.DSPBinary())
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected ntfy topic empty by default, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[paths]",
		`output_dir = "` + filepath.Join(dir, "out") + `"`,
		"[tools]",
		`dsp_binary = "dspenc-test"`,
		"encode_timeout = 60",
		"[defaults]",
		"sample_rate = 44100",
		`format = "son"`,
		"[logging]",
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit file to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(dir, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Tools.DSPBinary != "dspenc-test" || cfg.Tools.EncodeTimeout != 60 {
		t.Fatalf("unexpected tools: %+v", cfg.Tools)
	}
	if cfg.Defaults.SampleRate != 44100 || cfg.Defaults.Format != "son" {
		t.Fatalf("unexpected defaults: %+v", cfg.Defaults)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
	// Omitted sections keep repository defaults.
	if cfg.Tools.OGGBinary != "oggenc2sns" {
		t.Fatalf("unexpected ogg binary: %q", cfg.Tools.OGGBinary)
	}
}

func TestLoadRejectsBadSampleRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[defaults]\nsample_rate = 12345\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported sample rate")
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[defaults]\nformat = \"wav\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log level")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestSampleRateAllowed(t *testing.T) {
	for _, rate := range config.AllowedSampleRates {
		if !config.SampleRateAllowed(rate) {
			t.Fatalf("expected %d to be allowed", rate)
		}
	}
	if config.SampleRateAllowed(11025) {
		t.Fatal("expected 11025 to be rejected")
	}
}
