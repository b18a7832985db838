package product

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gofmask/internal/services"
)

const (
	// SentinelMarker prefixes every Sentinel-2 product name.
	SentinelMarker = "S2"
	// GranuleDir holds the per-tile folders of a Sentinel-2 SAFE product.
	GranuleDir = "GRANULE"
	// GranulePattern selects the processing-level folder Fmask runs in.
	GranulePattern = "L1C*"
)

var archiveSuffixes = []string{".gz", ".tar", ".tgz", ".zip"}

// IsArchive reports whether path names an archive that must be staged before
// resolution.
func IsArchive(path string) bool {
	ext := filepath.Ext(path)
	for _, suffix := range archiveSuffixes {
		if ext == suffix {
			return true
		}
	}
	return false
}

// IsSentinel reports whether the product name carries the Sentinel-2 marker.
func IsSentinel(path string) bool {
	return strings.HasPrefix(filepath.Base(path), SentinelMarker)
}

// Resolve returns the working directory for a directory-form product.
func Resolve(path string) (string, error) {
	if !IsSentinel(path) {
		return path, nil
	}
	return granule(path)
}

// ResolveStaged returns the working directory for an archive that has been
// extracted into extractRoot. The archive's own name decides whether the
// Sentinel layout applies, since the extracted folder name may differ.
func ResolveStaged(archivePath, extractRoot string) (string, error) {
	root, err := ProductRoot(extractRoot)
	if err != nil {
		return "", err
	}
	if !IsSentinel(archivePath) {
		return root, nil
	}
	return granule(root)
}

// ProductRoot returns the single top-level entry of an extraction root, or the
// root itself when the archive held zero or several entries. Archives holding
// several sibling products are not split into separate jobs.
func ProductRoot(extractRoot string) (string, error) {
	entries, err := os.ReadDir(extractRoot)
	if err != nil {
		return "", services.Wrap(services.ErrResolution, "resolve", "read extraction root", extractRoot, err)
	}
	if len(entries) == 1 {
		return filepath.Join(extractRoot, entries[0].Name()), nil
	}
	return extractRoot, nil
}

// Granules lists every directory matching GRANULE/L1C* beneath a Sentinel-2
// product, in lexical order.
func Granules(productDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(productDir, GranuleDir, GranulePattern))
	if err != nil {
		return nil, err
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func granule(productDir string) (string, error) {
	dirs, err := Granules(productDir)
	if err != nil {
		return "", services.Wrap(services.ErrResolution, "resolve", "glob granules", productDir, err)
	}
	if len(dirs) == 0 {
		return "", services.Wrap(services.ErrResolution, "resolve", "",
			fmt.Sprintf("no %s/%s directory in %s", GranuleDir, GranulePattern, productDir), nil)
	}
	return dirs[0], nil
}
