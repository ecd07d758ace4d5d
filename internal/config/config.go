package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains project directory configuration.
type Paths struct {
	// ProjectRoot anchors every relative path in the project layout.
	ProjectRoot string `toml:"project_root"`
	// GeneratedDir holds derived transcription artifacts (words tables, VTTs).
	GeneratedDir string `toml:"generated_dir"`
	// PullDir holds downloaded media and upstream caption files.
	PullDir string `toml:"pull_dir"`
	LogDir  string `toml:"log_dir"`
}

// Detector contains configuration for repeated-phrase hallucination scanning.
type Detector struct {
	// Thresholds is a comma-separated list of length:count rules,
	// e.g. "1:10,2:4,3:4".
	Thresholds string `toml:"thresholds"`
	// MaxWindowSeconds is the widest time span a repeated phrase may cover
	// and still count as a transcription stutter.
	MaxWindowSeconds float64 `toml:"max_window_seconds"`
}

// Retry contains configuration for the batch re-transcription worker.
type Retry struct {
	// Transcriber is the external speech-to-text command.
	Transcriber string `toml:"transcriber"`
	Model       string `toml:"model"`
	// Language is the transcription language; empty means auto-detect.
	Language string `toml:"language"`
	Workers  int    `toml:"workers"`
}

// Catalog contains configuration for the SQLite transcript catalog.
type Catalog struct {
	// Path to the catalog database. Defaults to <log_dir>/catalog.db.
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidops.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Detector Detector `toml:"detector"`
	Retry    Retry    `toml:"retry"`
	Catalog  Catalog  `toml:"catalog"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidops/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidops.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory. Project directories are the
// user's data and are never created implicitly.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// GeneratedPath resolves the generated-data directory against the project root.
func (c *Config) GeneratedPath() string {
	return resolveAgainst(c.Paths.ProjectRoot, c.Paths.GeneratedDir)
}

// GeneratedPathUnder resolves the generated-data directory against an
// alternate project root, leaving the configured root untouched.
func (c *Config) GeneratedPathUnder(root string) string {
	return resolveAgainst(root, c.Paths.GeneratedDir)
}

// PullPath resolves the pull directory against the project root.
func (c *Config) PullPath() string {
	return resolveAgainst(c.Paths.ProjectRoot, c.Paths.PullDir)
}

// CatalogPath returns the catalog database location.
func (c *Config) CatalogPath() string {
	if strings.TrimSpace(c.Catalog.Path) != "" {
		return c.Catalog.Path
	}
	return filepath.Join(c.Paths.LogDir, "catalog.db")
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

func resolveAgainst(root, dir string) string {
	if dir == "" {
		return root
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
