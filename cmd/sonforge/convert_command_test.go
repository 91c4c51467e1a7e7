package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sonforge/internal/services"
	"sonforge/internal/testsupport"
)

func TestConvertEndToEnd(t *testing.T) {
	binDir := t.TempDir()
	dsp := writeStubEncoder(t, binDir, "dspenc-stub")
	env := setupCLITestEnv(t, testsupport.WithDSPBinary(dsp))

	input := filepath.Join(env.baseDir, "battle_theme.wav")
	testsupport.WriteWav(t, input)

	out, _, err := runCLI(t, []string{"convert", input}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Wrote ")

	output := filepath.Join(env.cfg.Paths.OutputDir, "battle_theme.sns")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output at %s: %v", output, err)
	}
	if _, err := os.Stat(output + ".part"); !os.IsNotExist(err) {
		t.Fatalf("staging file left behind: %v", err)
	}

	histOut, _, err := runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, histOut, "battle_theme.wav")
	requireContains(t, histOut, "\"Outcome\": \"success\"")
}

func TestConvertConsumesBorrowedBeats(t *testing.T) {
	binDir := t.TempDir()
	dsp := writeStubEncoder(t, binDir, "dspenc-stub")
	env := setupCLITestEnv(t, testsupport.WithDSPBinary(dsp))

	source := filepath.Join(env.baseDir, "menu_theme.sns")
	testsupport.WriteSns(t, source, 10, 20)
	if _, _, err := runCLI(t, []string{"beats", "steal", source}, env.configPath); err != nil {
		t.Fatalf("beats steal: %v", err)
	}

	input := filepath.Join(env.baseDir, "battle_theme.wav")
	testsupport.WriteWav(t, input)

	out, _, err := runCLI(t, []string{"convert", input, "--extras", "custombeats"}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Borrowed beats consumed")

	if _, err := os.Stat(env.cfg.Paths.BeatsCache); !os.IsNotExist(err) {
		t.Fatalf("expected beats cache consumed: %v", err)
	}
}

func TestConvertRejectsInvalidWav(t *testing.T) {
	env := setupCLITestEnv(t)

	input := filepath.Join(env.baseDir, "not_audio.wav")
	if err := os.WriteFile(input, []byte("plainly not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, []string{"convert", input}, env.configPath)
	if err == nil {
		t.Fatal("expected error for invalid wav")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestConvertMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"convert", filepath.Join(env.baseDir, "absent.wav")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}
