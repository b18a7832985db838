// Package config loads, normalizes, validates, and updates gofmask
// configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and accepts the flat config.yaml written by
// pyFmask. FMASK_DIR and MR_DIR environment variables
// override the file. Update rewrites the two tool paths under a file lock.
//
// The loaded Config is passed explicitly to the commands and dispatcher that
// need it; nothing in this package holds process-wide state.
package config
