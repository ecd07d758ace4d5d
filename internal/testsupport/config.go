package testsupport

import (
	"path/filepath"
	"testing"

	"vidops/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory per test,
// with the project layout created on disk.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ProjectRoot = base
	cfg.Paths.GeneratedDir = filepath.Join(base, "generated")
	cfg.Paths.PullDir = filepath.Join(base, "pull")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	MustMkdirAll(t, cfg.Paths.GeneratedDir, cfg.Paths.PullDir, cfg.Paths.LogDir)
	return &cfg
}

// WithWorkers overrides the retry worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Retry.Workers = n
	}
}

// WithThresholds overrides the detector threshold rules on the test config.
func WithThresholds(spec string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Detector.Thresholds = spec
	}
}
