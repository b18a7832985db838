package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Fmask.TimeoutSeconds < 0 {
		return errors.New("fmask.timeout_seconds must be zero (no timeout) or positive")
	}
	if c.Staging.StaleHours < 0 {
		return errors.New("staging.stale_hours must be positive")
	}
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// RequireTool reports whether both external tool paths are set. Commands that
// only inspect or edit configuration do not need them, so Load does not check.
func (c *Config) RequireTool() error {
	if strings.TrimSpace(c.Fmask.FmaskDir) == "" {
		return errors.New("fmask.fmask_dir is not set (use 'gofmask update-fmask-dir')")
	}
	if strings.TrimSpace(c.Fmask.MRDir) == "" {
		return errors.New("fmask.mr_dir is not set (use 'gofmask update-mr-dir')")
	}
	return nil
}
