package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeDefaults()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.BeatsCache) == "" {
		c.Paths.BeatsCache = defaultBeatsCache
	}
	if c.Paths.BeatsCache, err = expandPath(c.Paths.BeatsCache); err != nil {
		return fmt.Errorf("paths.beats_cache: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockFilePath) == "" {
		c.Paths.LockFilePath = defaultLockFilePath
	}
	if c.Paths.LockFilePath, err = expandPath(c.Paths.LockFilePath); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.DSPBinary = strings.TrimSpace(c.Tools.DSPBinary)
	c.Tools.OGGBinary = strings.TrimSpace(c.Tools.OGGBinary)
	if c.Tools.DSPBinary == "" {
		c.Tools.DSPBinary = defaultDSPBinary
	}
	if c.Tools.OGGBinary == "" {
		c.Tools.OGGBinary = defaultOGGBinary
	}
	if c.Tools.EncodeTimeout <= 0 {
		c.Tools.EncodeTimeout = defaultEncodeTimeout
	}
	if c.Tools.MinFreeSpaceMB <= 0 {
		c.Tools.MinFreeSpaceMB = defaultMinFreeSpaceMB
	}
}

func (c *Config) normalizeDefaults() {
	if c.Defaults.SampleRate <= 0 {
		c.Defaults.SampleRate = defaultSampleRate
	}
	c.Defaults.Format = strings.ToLower(strings.TrimSpace(c.Defaults.Format))
	if c.Defaults.Format == "" {
		c.Defaults.Format = defaultFormat
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
