package relocate

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gofmask/internal/fileutil"
	"gofmask/internal/logging"
	"gofmask/internal/services"
	"gofmask/internal/services/fmask"
)

const (
	// ArtifactSuffix ends the name of every cloud mask Fmask writes.
	ArtifactSuffix = "Fmask4.tif"
	// IntermediateDir is the folder Fmask writes its outputs into.
	IntermediateDir = "FMASK_DATA"
)

// Relocator moves cloud masks out of a job's working directory.
type Relocator struct {
	progress io.Writer
	logger   *slog.Logger
}

// New constructs a Relocator printing progress lines to progress.
func New(progress io.Writer, logger *slog.Logger) *Relocator {
	if progress == nil {
		progress = io.Discard
	}
	return &Relocator{
		progress: progress,
		logger:   logging.NewComponentLogger(logger, "relocate"),
	}
}

// FindArtifacts returns every regular file beneath root whose name ends in
// ArtifactSuffix, in lexical order.
func FindArtifacts(root string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ArtifactSuffix) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Relocate moves the single cloud mask below workDir into outDir, removing the
// FMASK_DATA folder it came from. Without outDir the mask goes to home and the
// folder is left alone. It returns the artifact's new path.
func (r *Relocator) Relocate(ctx context.Context, workDir, outDir, home string, ordinal int) (string, error) {
	prefix := fmask.Prefix(ordinal)
	logger := logging.WithContext(ctx, r.logger)

	dest := outDir
	if dest != "" {
		fmt.Fprintf(r.progress, "%smove cloud mask to %s\n", prefix, dest)
	} else {
		fmt.Fprintf(r.progress, "%sno output directory has been provided: cloud mask will be move to %s\n", prefix, home)
		logging.WarnWithContext(logger, "no output directory provided", "relocate_home_fallback",
			logging.String(logging.FieldErrorHint, "pass --out-dir to choose where cloud masks go"),
			logging.String(logging.FieldImpact, "cloud mask moved to home directory"),
			logging.String("destination", home),
		)
		dest = home
	}

	artifact, err := single(workDir)
	if err != nil {
		return "", err
	}

	moved, err := fileutil.MoveInto(artifact, dest)
	if err != nil {
		return "", services.Wrap(services.ErrRelocation, "relocate", "move", artifact, err)
	}
	logger.Debug("cloud mask relocated", logging.String("artifact", moved))

	if outDir == "" {
		return moved, nil
	}
	parent := filepath.Dir(artifact)
	if filepath.Base(parent) == IntermediateDir {
		if err := os.RemoveAll(parent); err != nil {
			return moved, fmt.Errorf("remove %s: %w", parent, err)
		}
	}
	return moved, nil
}

func single(workDir string) (string, error) {
	matches, err := FindArtifacts(workDir)
	if err != nil {
		return "", services.Wrap(services.ErrDiscovery, "relocate", "search", workDir, err)
	}
	switch len(matches) {
	case 0:
		return "", services.Wrap(services.ErrDiscovery, "relocate", "",
			fmt.Sprintf("no *%s below %s", ArtifactSuffix, workDir), nil)
	case 1:
		return matches[0], nil
	default:
		return "", services.Wrap(services.ErrAmbiguousArtifact, "relocate", "",
			fmt.Sprintf("%d *%s files below %s: %s", len(matches), ArtifactSuffix, workDir, strings.Join(matches, ", ")), nil)
	}
}
