package bagit

import (
	"archive/tar"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// TarReader reads a single uncompressed USTAR/POSIX tar archive (spec 6.1).
// relPath is returned verbatim, including the leading bag-root directory
// inside the archive; callers strip it (spec 4.C).
//
// Grounded on bagman/bag.go's Untar (tar walk, top-level-directory
// detection).
type TarReader struct {
	path         string
	topLevelDir  string
	sawTopLevel  bool
}

// NewTarReader returns a reader for the tar file at path.
func NewTarReader(path string) (*TarReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "bagit: cannot stat tar file %q", path)
	}
	return &TarReader{path: path}, nil
}

// TopLevelDir returns the name of the single top-level directory found
// inside the archive, populated after the first List or Read pass.
func (t *TarReader) TopLevelDir() string {
	return t.topLevelDir
}

func (t *TarReader) open() (*os.File, *tar.Reader, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "bagit: cannot open tar file %q", t.path)
	}
	return f, tar.NewReader(f), nil
}

func (t *TarReader) recordTopLevelDir(name string) {
	if t.sawTopLevel {
		return
	}
	parts := strings.SplitN(name, "/", 2)
	if parts[0] != "" {
		t.topLevelDir = parts[0]
		t.sawTopLevel = true
	}
}

func (t *TarReader) List(fn func(Entry) error) error {
	f, tr, err := t.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "bagit: error reading tar header")
		}
		t.recordTopLevelDir(header.Name)
		switch header.Typeflag {
		case tar.TypeDir:
			if err := fn(Entry{RelPath: header.Name, IsDir: true}); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := fn(Entry{RelPath: header.Name, IsDir: false, Size: header.Size}); err != nil {
				return err
			}
		default:
			// Symlinks and other special types are skipped (spec 4.C).
		}
	}
	return nil
}

func (t *TarReader) Read(fn func(Entry, io.Reader) error) error {
	f, tr, err := t.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "bagit: error reading tar header")
		}
		t.recordTopLevelDir(header.Name)
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(Entry{RelPath: header.Name, IsDir: false, Size: header.Size}, tr); err != nil {
			return err
		}
	}
	return nil
}
