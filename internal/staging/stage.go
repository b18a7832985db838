package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"gofmask/internal/logging"
	"gofmask/internal/services"
)

// DirPrefix names every extraction directory gofmask creates, so housekeeping
// never touches unrelated entries of a shared temp dir.
const DirPrefix = "gofmask-"

// Manager creates per-job extraction directories beneath a base directory.
type Manager struct {
	baseDir string
	logger  *slog.Logger
}

// NewManager returns a Manager rooted at baseDir.
func NewManager(baseDir string, logger *slog.Logger) (*Manager, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, errors.New("staging base directory is empty")
	}
	return &Manager{
		baseDir: filepath.Clean(baseDir),
		logger:  logging.NewComponentLogger(logger, "staging"),
	}, nil
}

// BaseDir returns the directory extraction directories are created in.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Stage extracts the archive at archivePath into a fresh, uniquely named
// directory. The returned Context owns that directory; the caller must call
// Cleanup once the job is done with it.
func (m *Manager) Stage(ctx context.Context, archivePath string) (*Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStaging, "stage", "create base directory", m.baseDir, err)
	}

	root := filepath.Join(m.baseDir, DirPrefix+uuid.NewString())
	if err := os.Mkdir(root, 0o700); err != nil {
		return nil, services.Wrap(services.ErrStaging, "stage", "create extraction directory", root, err)
	}
	// Resolve symlinked temp dirs (macOS /var -> /private/var) so paths
	// printed and compared later match what the tool sees as its cwd.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	sc := &Context{Root: root}
	logging.WithContext(ctx, m.logger).Debug("extracting product",
		logging.String("archive", archivePath),
		logging.String("dir", root),
	)
	if err := Extract(ctx, archivePath, root); err != nil {
		if cleanupErr := sc.Cleanup(); cleanupErr != nil {
			logging.WarnWithContext(logging.WithContext(ctx, m.logger), "failed to remove extraction directory", "staging_cleanup_failed",
				logging.String("dir", root),
				logging.Error(cleanupErr),
				logging.String(logging.FieldErrorHint, "remove it manually or run 'gofmask staging clean'"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
		return nil, err
	}
	return sc, nil
}

// Context is the ephemeral extraction directory bound to one job.
type Context struct {
	Root string

	once sync.Once
	err  error
}

// Cleanup removes the extraction directory and everything beneath it. Only the
// first call does any work; later calls return the first call's result.
func (c *Context) Cleanup() error {
	if c == nil {
		return nil
	}
	c.once.Do(func() {
		if err := os.RemoveAll(c.Root); err != nil {
			c.err = fmt.Errorf("remove staging directory %s: %w", c.Root, err)
		}
	})
	return c.err
}
