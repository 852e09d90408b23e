package bagit

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DirectoryReader walks a filesystem directory, normalizing paths to
// forward slashes, bag-root-relative (spec 4.C). Symlinks and other
// non-regular entries are skipped with an informational warning recorded
// on Warnings, never a hard failure (spec 4.C, 9 OQ3).
//
// Grounded on VISCHub-bagins/bag.go's ListFiles (filepath.Walk-based
// directory listing).
type DirectoryReader struct {
	root     string
	Warnings []string
}

// NewDirectoryReader returns a reader rooted at path, which must be an
// existing directory.
func NewDirectoryReader(path string) (*DirectoryReader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bagit: cannot stat directory %q", path)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("bagit: %q is not a directory", path)
	}
	return &DirectoryReader{root: path}, nil
}

func (d *DirectoryReader) List(fn func(Entry) error) error {
	return filepath.Walk(d.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == d.root {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			d.Warnings = append(d.Warnings, "skipping symlink: "+p)
			return nil
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			d.Warnings = append(d.Warnings, "skipping non-regular entry: "+p)
			return nil
		}
		rel, err := d.relPath(p)
		if err != nil {
			return err
		}
		return fn(Entry{RelPath: rel, IsDir: info.IsDir(), Size: info.Size()})
	})
}

func (d *DirectoryReader) Read(fn func(Entry, io.Reader) error) error {
	return filepath.Walk(d.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == d.root || info.IsDir() {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			d.Warnings = append(d.Warnings, "skipping symlink: "+p)
			return nil
		}
		if !info.Mode().IsRegular() {
			d.Warnings = append(d.Warnings, "skipping non-regular entry: "+p)
			return nil
		}
		rel, err := d.relPath(p)
		if err != nil {
			return err
		}
		file, err := os.Open(p)
		if err != nil {
			return errors.Wrapf(err, "bagit: cannot open %q", p)
		}
		defer file.Close()
		return fn(Entry{RelPath: rel, IsDir: false, Size: info.Size()}, file)
	})
}

func (d *DirectoryReader) relPath(p string) (string, error) {
	rel, err := filepath.Rel(d.root, p)
	if err != nil {
		return "", errors.Wrapf(err, "bagit: cannot relativize %q", p)
	}
	return filepath.ToSlash(rel), nil
}

// BagName returns the directory's base name, which is the bag name for a
// directory container (spec 6.1).
func (d *DirectoryReader) BagName() string {
	return strings.TrimRight(filepath.Base(d.root), "/")
}
