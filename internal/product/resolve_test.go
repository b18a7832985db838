package product_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gofmask/internal/product"
	"gofmask/internal/services"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func TestIsArchive(t *testing.T) {
	cases := map[string]bool{
		"/data/LC08_L1TP.tar.gz": true,
		"/data/LC08_L1TP.tar":    true,
		"/data/LC08_L1TP.tgz":    true,
		"/data/S2A_MSIL1C.zip":   true,
		"/data/S2A_MSIL1C.SAFE":  false,
		"/data/LC08_L1TP":        false,
		"/data/S2A_MSIL1C.ZIP":   false,
	}
	for path, want := range cases {
		if got := product.IsArchive(path); got != want {
			t.Fatalf("IsArchive(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestResolveLandsatReturnsInput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "LC08_L1TP_198030_20200101")
	mkdirs(t, dir)

	got, err := product.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != dir {
		t.Fatalf("expected input path unchanged, got %q", got)
	}
}

func TestResolveSentinelReturnsGranule(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S2A_MSIL1C_20200101.SAFE")
	want := filepath.Join(dir, "GRANULE", "L1C_T31TCJ_A023")
	mkdirs(t, want, filepath.Join(dir, "GRANULE", "QI_DATA"))

	got, err := product.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected granule: got %q want %q", got, want)
	}
}

func TestResolveSentinelWithoutGranuleFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S2B_MSIL1C_20200101.SAFE")
	mkdirs(t, filepath.Join(dir, "GRANULE"))
	// A file matching the pattern is not a granule directory.
	if err := os.WriteFile(filepath.Join(dir, "GRANULE", "L1C_notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := product.Resolve(dir)
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestResolveSentinelTakesFirstOfSeveral(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "S2A_MSIL1C.SAFE")
	first := filepath.Join(dir, "GRANULE", "L1C_T31TCJ")
	mkdirs(t, filepath.Join(dir, "GRANULE", "L1C_T31TDJ"), first)

	got, err := product.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != first {
		t.Fatalf("expected lexically first granule %q, got %q", first, got)
	}
}

func TestProductRootSingleEntry(t *testing.T) {
	root := t.TempDir()
	inner := filepath.Join(root, "LC08_L1TP")
	mkdirs(t, inner)

	got, err := product.ProductRoot(root)
	if err != nil {
		t.Fatalf("ProductRoot returned error: %v", err)
	}
	if got != inner {
		t.Fatalf("expected single entry %q, got %q", inner, got)
	}
}

func TestProductRootMultipleEntriesKeepsRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "a"), filepath.Join(root, "b"))

	got, err := product.ProductRoot(root)
	if err != nil {
		t.Fatalf("ProductRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected extraction root for multi-entry archive, got %q", got)
	}
}

func TestResolveStagedUsesArchiveName(t *testing.T) {
	root := t.TempDir()
	// The extracted folder does not carry the marker; the archive name does.
	granule := filepath.Join(root, "product.SAFE", "GRANULE", "L1C_T31TCJ")
	mkdirs(t, granule)

	got, err := product.ResolveStaged("/in/S2A_MSIL1C_20200101.zip", root)
	if err != nil {
		t.Fatalf("ResolveStaged returned error: %v", err)
	}
	if got != granule {
		t.Fatalf("unexpected working dir: got %q want %q", got, granule)
	}

	got, err = product.ResolveStaged("/in/LC08_L1TP.tar.gz", root)
	if err != nil {
		t.Fatalf("ResolveStaged returned error: %v", err)
	}
	if got != filepath.Join(root, "product.SAFE") {
		t.Fatalf("expected product root for Landsat archive, got %q", got)
	}
}
