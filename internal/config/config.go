package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Fmask contains the external masking tool locations.
type Fmask struct {
	// FmaskDir is the path to the Fmask application launcher.
	FmaskDir string `toml:"fmask_dir"`
	// MRDir is the MATLAB Runtime directory passed as the launcher's first argument.
	MRDir          string `toml:"mr_dir"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Shell          string `toml:"shell"`
}

// Paths contains directory configuration.
type Paths struct {
	// StagingDir holds archive extraction directories. Empty selects the OS temp dir.
	StagingDir string `toml:"staging_dir"`
	HistoryDB  string `toml:"history_db"`
}

// Staging contains leftover staging directory housekeeping settings.
type Staging struct {
	StaleHours int `toml:"stale_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// History controls the run history database.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Notifications configures ntfy delivery of batch outcomes.
type Notifications struct {
	// NtfyTopic is the full topic URL. Empty disables notifications.
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for gofmask. It is loaded once
// per process and passed explicitly to the commands that need it.
type Config struct {
	Fmask   Fmask   `toml:"fmask"`
	Paths   Paths   `toml:"paths"`
	Staging Staging `toml:"staging"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`

	Notifications Notifications `toml:"notifications"`
}

// legacyFile mirrors the flat config.yaml used by pyFmask.
type legacyFile struct {
	FmaskDir string `yaml:"fmask_dir"`
	MRDir    string `yaml:"mr_dir"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gofmask/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if cfg, err = decodeFile(resolvedPath); err != nil {
			return nil, "", false, err
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

// decodeFile reads path on top of the defaults without normalizing, so values
// written back by Update keep the user's spelling (tilde paths and all).
func decodeFile(path string) (Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if isYAML(path) {
		var legacy legacyFile
		if err := yaml.NewDecoder(file).Decode(&legacy); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		if legacy.FmaskDir != "" {
			cfg.Fmask.FmaskDir = legacy.FmaskDir
		}
		if legacy.MRDir != "" {
			cfg.Fmask.MRDir = legacy.MRDir
		}
		return cfg, nil
	}

	if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
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

	projectPath, err := filepath.Abs("gofmask.toml")
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

// StagingBase returns the directory archive extraction happens under.
func (c *Config) StagingBase() string {
	if strings.TrimSpace(c.Paths.StagingDir) != "" {
		return c.Paths.StagingDir
	}
	return os.TempDir()
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
