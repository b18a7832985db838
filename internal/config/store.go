package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Keys accepted by Update.
const (
	KeyFmaskDir = "fmask_dir"
	KeyMRDir    = "mr_dir"
)

// Update persists a single tool path to the configuration file at path and
// returns the reloaded configuration. The file keeps its format: legacy YAML
// files are rewritten as YAML, everything else as TOML. Concurrent updates are
// serialized through an advisory lock next to the file.
func Update(path, key, value string) (*Config, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(resolved + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	cfg := Default()
	if exists {
		if cfg, err = decodeFile(resolved); err != nil {
			return nil, err
		}
	}

	switch key {
	case KeyFmaskDir:
		cfg.Fmask.FmaskDir = value
	case KeyMRDir:
		cfg.Fmask.MRDir = value
	default:
		return nil, fmt.Errorf("unknown config key %q", key)
	}

	data, err := encode(resolved, cfg)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(resolved, data); err != nil {
		return nil, err
	}

	updated, _, _, err := Load(resolved)
	return updated, err
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func encode(path string, cfg Config) ([]byte, error) {
	if !isYAML(path) {
		return Encode(&cfg)
	}
	data, err := yaml.Marshal(legacyFile{FmaskDir: cfg.Fmask.FmaskDir, MRDir: cfg.Fmask.MRDir})
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
