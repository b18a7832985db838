package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates the given entries beneath root. Names ending in "/" are
// created as directories; everything else is written as a file holding the
// mapped content.
func WriteTree(t testing.TB, root string, entries map[string]string) {
	t.Helper()

	for name, content := range entries {
		target := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", target, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
}

// LandsatProduct creates a Landsat-style product directory and returns it.
func LandsatProduct(t testing.TB, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	WriteTree(t, dir, map[string]string{
		name + "_MTL.txt": "GROUP = L1_METADATA_FILE",
		name + "_B1.TIF":  "band",
	})
	return dir
}

// SentinelProduct creates a Sentinel-2 SAFE directory with a single L1C
// granule and returns the product directory and the granule directory.
func SentinelProduct(t testing.TB, parent, name string) (string, string) {
	t.Helper()
	dir := filepath.Join(parent, name)
	granule := filepath.Join(dir, "GRANULE", "L1C_T31TCJ_A023000_20200101T000000")
	WriteTree(t, dir, map[string]string{
		"MTD_MSIL1C.xml": "<xml/>",
		"GRANULE/L1C_T31TCJ_A023000_20200101T000000/MTD_TL.xml": "<xml/>",
		"GRANULE/L1C_T31TCJ_A023000_20200101T000000/IMG_DATA/":  "",
	})
	return dir, granule
}
