package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetector()
	c.normalizeRetry()
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	// The original shell tooling drove everything through $PROJECT_ROOT;
	// honor it when the config leaves the root at its default.
	if root, ok := os.LookupEnv("PROJECT_ROOT"); ok && strings.TrimSpace(root) != "" {
		if c.Paths.ProjectRoot == "" || c.Paths.ProjectRoot == "." {
			c.Paths.ProjectRoot = root
		}
	}
	if strings.TrimSpace(c.Paths.ProjectRoot) == "" {
		c.Paths.ProjectRoot = "."
	}

	var err error
	if c.Paths.ProjectRoot, err = expandPath(c.Paths.ProjectRoot); err != nil {
		return fmt.Errorf("paths.project_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.GeneratedDir) == "" {
		c.Paths.GeneratedDir = defaultGeneratedDir
	}
	if strings.TrimSpace(c.Paths.PullDir) == "" {
		c.Paths.PullDir = defaultPullDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDetector() {
	c.Detector.Thresholds = strings.TrimSpace(c.Detector.Thresholds)
	if c.Detector.Thresholds == "" {
		c.Detector.Thresholds = defaultThresholds
	}
	if c.Detector.MaxWindowSeconds <= 0 {
		c.Detector.MaxWindowSeconds = defaultMaxWindowSeconds
	}
}

func (c *Config) normalizeRetry() {
	if value, ok := os.LookupEnv("MODEL"); ok && strings.TrimSpace(value) != "" {
		c.Retry.Model = value
	}
	if value, ok := os.LookupEnv("LANGUAGE"); ok {
		c.Retry.Language = value
	}
	if value, ok := os.LookupEnv("WORKERS"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			c.Retry.Workers = n
		}
	}

	c.Retry.Transcriber = strings.TrimSpace(c.Retry.Transcriber)
	if c.Retry.Transcriber == "" {
		c.Retry.Transcriber = defaultTranscriber
	}
	c.Retry.Model = strings.TrimSpace(c.Retry.Model)
	if c.Retry.Model == "" {
		c.Retry.Model = defaultModel
	}
	c.Retry.Language = strings.TrimSpace(c.Retry.Language)
	if strings.EqualFold(c.Retry.Language, "auto") {
		c.Retry.Language = ""
	}
	if c.Retry.Workers <= 0 {
		c.Retry.Workers = defaultWorkers
	}
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.Path == "" {
		return nil
	}
	expanded, err := expandPath(c.Catalog.Path)
	if err != nil {
		return fmt.Errorf("catalog.path: %w", err)
	}
	c.Catalog.Path = expanded
	return nil
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
