package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetector() error {
	if c.Detector.MaxWindowSeconds <= 0 {
		return errors.New("detector.max_window_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.Workers < 1 {
		return errors.New("retry.workers must be at least 1")
	}
	if c.Retry.Workers > 64 {
		return fmt.Errorf("retry.workers %d is unreasonably high (max 64)", c.Retry.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
