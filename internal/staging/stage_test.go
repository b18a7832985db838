package staging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gofmask/internal/logging"
	"gofmask/internal/services"
	"gofmask/internal/staging"
	"gofmask/internal/testsupport"
)

var productEntries = map[string]string{
	"LC08_L1TP_198030/":                 "",
	"LC08_L1TP_198030/LC08_MTL.txt":     "GROUP = L1_METADATA_FILE",
	"LC08_L1TP_198030/LC08_B1.TIF":      "band-1",
	"LC08_L1TP_198030/nested/extra.txt": "extra",
}

func newManager(t *testing.T) *staging.Manager {
	t.Helper()
	m, err := staging.NewManager(filepath.Join(t.TempDir(), "staging"), logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func assertTree(t *testing.T, root string, entries map[string]string) {
	t.Helper()
	for name, content := range entries {
		target := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(target)
		if err != nil {
			t.Fatalf("expected %s after extraction: %v", name, err)
		}
		if strings.HasSuffix(name, "/") {
			if !info.IsDir() {
				t.Fatalf("expected %s to be a directory", name)
			}
			continue
		}
		got, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(got) != content {
			t.Fatalf("content mismatch for %s: got %q want %q", name, got, content)
		}
	}
}

func TestStageExtractsEveryFormat(t *testing.T) {
	src := t.TempDir()
	archives := map[string]func(string){
		"product.zip":    func(p string) { testsupport.WriteZip(t, p, productEntries) },
		"product.tar":    func(p string) { testsupport.WriteTar(t, p, productEntries, false) },
		"product.tar.gz": func(p string) { testsupport.WriteTar(t, p, productEntries, true) },
		"product.tgz":    func(p string) { testsupport.WriteTar(t, p, productEntries, true) },
		"product.gz":     func(p string) { testsupport.WriteTar(t, p, productEntries, true) },
	}
	for name, build := range archives {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(src, name)
			build(path)

			m := newManager(t)
			sc, err := m.Stage(context.Background(), path)
			if err != nil {
				t.Fatalf("Stage returned error: %v", err)
			}
			if !strings.HasPrefix(filepath.Base(sc.Root), staging.DirPrefix) {
				t.Fatalf("unexpected staging dir name %q", sc.Root)
			}
			assertTree(t, sc.Root, productEntries)

			if err := sc.Cleanup(); err != nil {
				t.Fatalf("Cleanup returned error: %v", err)
			}
			if _, err := os.Stat(sc.Root); !errors.Is(err, os.ErrNotExist) {
				t.Fatalf("expected staging dir removed, got %v", err)
			}
		})
	}
}

func TestStageRejectsGzipWithoutTar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene_B1.TIF.gz")
	testsupport.WriteGzip(t, path, "raw band")

	m := newManager(t)
	sc, err := m.Stage(context.Background(), path)
	if !errors.Is(err, services.ErrStaging) {
		t.Fatalf("expected ErrStaging, got sc=%v err=%v", sc, err)
	}
	entries, readErr := os.ReadDir(m.BaseDir())
	if readErr != nil {
		t.Fatalf("read staging base: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected extraction directory removed, found %d entries", len(entries))
	}
}

func TestStageUniqueDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.zip")
	testsupport.WriteZip(t, path, productEntries)
	m := newManager(t)

	a, err := m.Stage(context.Background(), path)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	defer a.Cleanup()
	b, err := m.Stage(context.Background(), path)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	defer b.Cleanup()

	if a.Root == b.Root {
		t.Fatalf("expected distinct staging dirs, both %q", a.Root)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.tar")
	testsupport.WriteTar(t, path, productEntries, false)

	sc, err := newManager(t).Stage(context.Background(), path)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := sc.Cleanup(); err != nil {
			t.Fatalf("Cleanup call %d returned error: %v", i+1, err)
		}
	}
	var nilCtx *staging.Context
	if err := nilCtx.Cleanup(); err != nil {
		t.Fatalf("nil context cleanup: %v", err)
	}
}

func TestStageRejectsEscapingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evil.tar")
	testsupport.WriteTar(t, path, map[string]string{"../escape.txt": "x"}, false)

	m := newManager(t)
	_, err := m.Stage(context.Background(), path)
	if !errors.Is(err, services.ErrStaging) {
		t.Fatalf("expected staging error, got %v", err)
	}
	dirs, err := staging.ListDirectories(m.BaseDir())
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 0 {
		t.Fatalf("expected failed extraction to be cleaned up, found %v", dirs)
	}
}

func TestStageCorruptArchiveFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := newManager(t).Stage(context.Background(), path)
	if !errors.Is(err, services.ErrStaging) {
		t.Fatalf("expected staging error, got %v", err)
	}
}

func TestStageHonoursCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product.zip")
	testsupport.WriteZip(t, path, productEntries)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newManager(t).Stage(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewManagerRequiresBaseDir(t *testing.T) {
	if _, err := staging.NewManager("  ", nil); err == nil {
		t.Fatal("expected error for empty base dir")
	}
}
