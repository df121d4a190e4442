// Package archive implements ports.Extractor for zip archives.
package archive

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/zerr"
)

// Extractor unpacks zip archives.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract writes every entry of the zip at archive below dest.
// Entry permissions are kept; entries resolving outside dest abort the extraction.
func (e *Extractor) Extract(ctx context.Context, archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrExtractFailed, err), "open archive"), "archive", archive)
	}
	defer func() {
		_ = r.Close()
	}()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(errors.Join(domain.ErrExtractFailed, err), "extract")
		}

		target, err := entryPath(dest, f.Name)
		if err != nil {
			return err
		}
		if err := writeEntry(f, dest, target); err != nil {
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrExtractFailed, err), "extract entry"), "entry", f.Name)
		}
	}
	return nil
}

// entryPath maps an archive entry name to a path inside dest.
func entryPath(dest, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if clean == "" || !filepath.IsLocal(clean) {
		return "", zerr.With(zerr.Wrap(domain.ErrArchiveEntryOutsideRoot, "extract entry"), "entry", name)
	}
	return filepath.Join(dest, clean), nil
}

func writeEntry(f *zip.File, dest, target string) error {
	mode := f.Mode()

	switch {
	case mode.IsDir():
		return os.MkdirAll(target, domain.DirPerm)
	case mode&fs.ModeSymlink != 0:
		return writeSymlink(f, dest, target)
	case !mode.IsRegular():
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = src.Close()
	}()

	perm := mode.Perm()
	if perm == 0 {
		perm = domain.FilePerm
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm) //nolint:gosec // target is checked by entryPath
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil { //nolint:gosec // archive size is bounded by the download
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask; restore the archived bits.
	return os.Chmod(target, perm)
}

// writeSymlink creates a link whose target stays inside dest.
func writeSymlink(f *zip.File, dest, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	link, err := io.ReadAll(io.LimitReader(src, 4096))
	_ = src.Close()
	if err != nil {
		return err
	}

	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(string(link)))
	rel, err := filepath.Rel(dest, resolved)
	if err != nil || filepath.IsAbs(string(link)) || !filepath.IsLocal(rel) {
		return zerr.With(zerr.Wrap(domain.ErrArchiveEntryOutsideRoot, "symlink"), "link", string(link))
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}
	return os.Symlink(string(link), target)
}

var _ ports.Extractor = (*Extractor)(nil)
