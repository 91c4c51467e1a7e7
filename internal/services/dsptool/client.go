package dsptool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Options carries the encoder settings the DSP back-end understands.
type Options struct {
	Debug       bool
	SampleRate  int
	ForceMono   bool
	Format      string
	Normalize   bool
	FourChannel bool
	Beats       []uint32
}

// Client defines DSP encoding behaviour.
type Client interface {
	Encode(ctx context.Context, inputPath, outputPath string, opts Options, progress func(percent int)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the dspenc command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "dspenc"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Encode launches dspenc and relays its progress lines until it exits.
func (c *CLI) Encode(ctx context.Context, inputPath, outputPath string, opts Options, progress func(int)) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	args := []string{
		"encode",
		"--input", inputPath,
		"--output", outputPath,
		"--rate", strconv.Itoa(opts.SampleRate),
		"--container", opts.Format,
		"--progress-json",
	}
	if opts.ForceMono {
		args = append(args, "--mono")
	}
	if opts.Normalize {
		args = append(args, "--normalize")
	}
	if opts.FourChannel {
		args = append(args, "--four-channel")
	}
	if opts.Debug {
		args = append(args, "--verbose")
	}
	if len(opts.Beats) > 0 {
		beatsPath, cleanup, err := writeBeatsFile(outputPath, opts.Beats)
		if err != nil {
			return fmt.Errorf("write beats file: %w", err)
		}
		defer cleanup()
		args = append(args, "--beats", beatsPath)
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Bytes()
		var payload struct {
			Percent int `json:"percent"`
		}
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		if progress != nil {
			progress(payload.Percent)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s output: %w", c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		if reason := lastLine(stderr.String()); reason != "" {
			return errors.New(reason)
		}
		return fmt.Errorf("%s failed: %w", c.binary, err)
	}
	return nil
}

func writeBeatsFile(outputPath string, beats []uint32) (string, func(), error) {
	file, err := os.CreateTemp(filepath.Dir(outputPath), ".beats-*.txt")
	if err != nil {
		return "", nil, err
	}
	for _, marker := range beats {
		if _, err := fmt.Fprintln(file, marker); err != nil {
			file.Close()
			os.Remove(file.Name())
			return "", nil, err
		}
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", nil, err
	}
	path := file.Name()
	return path, func() { _ = os.Remove(path) }, nil
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

var _ Client = (*CLI)(nil)
