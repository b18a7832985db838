// Package staging extracts archived products into per-job directories and
// removes them again.
//
// Each archive gets its own gofmask-<uuid> directory beneath the configured
// staging base. The returned Context owns that directory and its Cleanup is
// safe to call any number of times. CleanStale and ListDirectories manage
// directories left behind by interrupted runs.
package staging
