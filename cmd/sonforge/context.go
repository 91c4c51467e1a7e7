package main

import (
	"log/slog"
	"strings"
	"sync"

	"sonforge/internal/beatsteal"
	"sonforge/internal/config"
	"sonforge/internal/history"
	"sonforge/internal/logging"
	"sonforge/internal/sns"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	beatsOnce sync.Once
	beats     *beatsteal.Manager
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// configPath returns the trimmed value of the persistent --config flag,
// empty when unset.
func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// ensureBeats builds the beat-stealer manager, rehydrated from the on-disk
// cache so borrowed beats survive across invocations.
func (c *commandContext) ensureBeats() (*beatsteal.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	c.beatsOnce.Do(func() {
		c.beats = beatsteal.NewManager(sns.ExtractBeats, logger)
		if payload, ok, loadErr := beatsteal.LoadCache(cfg.Paths.BeatsCache); loadErr == nil && ok {
			c.beats.Restore(payload)
		}
	})
	return c.beats, nil
}

// syncBeatsCache persists the manager's current payload, or removes the cache
// file when the manager is empty.
func (c *commandContext) syncBeatsCache() error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	manager, err := c.ensureBeats()
	if err != nil {
		return err
	}
	if payload, ok := manager.Peek(); ok {
		return beatsteal.SaveCache(cfg.Paths.BeatsCache, payload)
	}
	return beatsteal.ClearCache(cfg.Paths.BeatsCache)
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg)
}
