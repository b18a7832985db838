package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gofmask/internal/config"
	"gofmask/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a batch depends on. outDir is only checked when
// set.
func RunAll(cfg *config.Config, outDir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckCommand("Shell", cfg.Fmask.Shell),
		CheckExecutable("Fmask application", cfg.Fmask.FmaskDir),
		CheckDirectoryReadable("MATLAB Runtime", cfg.Fmask.MRDir),
	}

	// The staging base is created on demand, so only an existing one is checked.
	if dir := strings.TrimSpace(cfg.Paths.StagingDir); dir != "" && exists(dir) {
		results = append(results, CheckDirectoryAccess("Staging directory", dir))
	}

	if outDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outDir))
	}
	return results
}

// Err returns a configuration error naming every failed check, or nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(failed, "; "), nil)
}

// Passed reports whether every check passed.
func Passed(results []Result) bool {
	return Err(results) == nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
