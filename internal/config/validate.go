package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if !SampleRateAllowed(c.Defaults.SampleRate) {
		return fmt.Errorf("defaults.sample_rate %d is not supported (allowed: %v)", c.Defaults.SampleRate, AllowedSampleRates)
	}
	switch c.Defaults.Format {
	case "son", "sns":
	default:
		return fmt.Errorf("defaults.format must be %q or %q, got %q", "son", "sns", c.Defaults.Format)
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.ContainsAny(c.Tools.DSPBinary, " \t") {
		return errors.New("tools.dsp_binary must be a bare executable name or path, not a command line")
	}
	if strings.ContainsAny(c.Tools.OGGBinary, " \t") {
		return errors.New("tools.ogg_binary must be a bare executable name or path, not a command line")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// SampleRateAllowed reports whether the codec back-ends accept rate.
func SampleRateAllowed(rate int) bool {
	for _, allowed := range AllowedSampleRates {
		if rate == allowed {
			return true
		}
	}
	return false
}
