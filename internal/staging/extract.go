package staging

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gofmask/internal/services"
)

const tarMagicOffset = 257

// Extract unpacks the archive at src into dest. Supported formats are zip,
// tar, and gzip-compressed tar (.tar.gz, .tgz, or .gz with a tar payload).
func Extract(ctx context.Context, src, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create extraction directory: %w", err)
	}

	name := strings.ToLower(filepath.Base(src))
	var err error
	switch {
	case strings.HasSuffix(name, ".zip"):
		err = extractZip(ctx, src, dest)
	case strings.HasSuffix(name, ".tar"):
		err = withFile(src, func(r io.Reader) error { return extractTar(ctx, r, dest) })
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		err = withGzip(src, func(r io.Reader) error { return extractTar(ctx, r, dest) })
	case strings.HasSuffix(name, ".gz"):
		err = withGzip(src, func(r io.Reader) error { return extractGzipPayload(ctx, r, dest, src) })
	default:
		return services.Wrap(services.ErrStaging, "stage", "extract", fmt.Sprintf("unsupported archive format: %s", src), nil)
	}
	if err != nil {
		if errors.Is(err, services.ErrStaging) || errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(services.ErrStaging, "stage", "extract", src, err)
	}
	return nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(bufio.NewReader(f))
}

func withGzip(path string, fn func(io.Reader) error) error {
	return withFile(path, func(r io.Reader) error {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return err
		}
		defer gz.Close()
		return fn(gz)
	})
}

// extractGzipPayload unpacks a .gz whose payload is a tar stream. A single
// compressed file is not a product directory, so it is rejected.
func extractGzipPayload(ctx context.Context, r io.Reader, dest, src string) error {
	br := bufio.NewReaderSize(r, 4096)
	head, _ := br.Peek(tarMagicOffset + 5)
	if len(head) < tarMagicOffset+5 || !bytes.Equal(head[tarMagicOffset:], []byte("ustar")) {
		return services.Wrap(services.ErrStaging, "stage", "extract",
			fmt.Sprintf("%s does not contain a tar archive", filepath.Base(src)), nil)
	}
	return extractTar(ctx, br, dest)
}

func extractTar(ctx context.Context, r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) || !within(dest, filepath.Join(filepath.Dir(target), hdr.Linkname)) {
				return services.Wrap(services.ErrStaging, "stage", "extract",
					fmt.Sprintf("symlink %s escapes extraction directory", hdr.Name), nil)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		default:
			// Device nodes, hard links, and FIFOs never occur in imagery products.
		}
	}
}

func extractZip(ctx context.Context, src, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := safeJoin(dest, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", file.Name, err)
		}
		mode := file.Mode().Perm()
		if mode == 0 {
			mode = 0o644
		}
		err = writeFile(target, rc, mode)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto dest and rejects names that would
// land outside it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !within(dest, target) {
		return "", services.Wrap(services.ErrStaging, "stage", "extract",
			fmt.Sprintf("entry %q escapes extraction directory", name), nil)
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
