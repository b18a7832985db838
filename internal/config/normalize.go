package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeFmask(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Staging.StaleHours <= 0 {
		c.Staging.StaleHours = defaultStaleHours
	}
	return nil
}

func (c *Config) normalizeFmask() error {
	if value, ok := os.LookupEnv("FMASK_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Fmask.FmaskDir = value
	}
	if value, ok := os.LookupEnv("MR_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Fmask.MRDir = value
	}
	var err error
	if c.Fmask.FmaskDir, err = expandPath(strings.TrimSpace(c.Fmask.FmaskDir)); err != nil {
		return fmt.Errorf("fmask.fmask_dir: %w", err)
	}
	if c.Fmask.MRDir, err = expandPath(strings.TrimSpace(c.Fmask.MRDir)); err != nil {
		return fmt.Errorf("fmask.mr_dir: %w", err)
	}
	c.Fmask.Shell = strings.TrimSpace(c.Fmask.Shell)
	if c.Fmask.Shell == "" {
		c.Fmask.Shell = defaultShell
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(strings.TrimSpace(c.Paths.StagingDir)); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
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
