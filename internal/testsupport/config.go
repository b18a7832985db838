package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gofmask/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Fmask.FmaskDir = filepath.Join(base, "fmask", "run_Fmask_4_3.sh")
	cfgVal.Fmask.MRDir = filepath.Join(base, "mcr")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubFmask writes the stub Fmask launcher and MATLAB runtime directory
// referenced by the config.
func WithStubFmask() ConfigOption {
	return func(b *configBuilder) {
		if err := os.MkdirAll(b.cfg.Fmask.MRDir, 0o755); err != nil {
			b.t.Fatalf("mkdir mr dir: %v", err)
		}
		WriteStubFmask(b.t, b.cfg.Fmask.FmaskDir)
	}
}

// WithHistoryDisabled turns off the run history database.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}
