package bagit

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Entry describes one item inside a bag container, without opening a
// stream for it (spec 4.C's list() phase).
type Entry struct {
	RelPath string
	IsDir   bool
	Size    int64
}

// Reader is the bag-entry reader capability contract (spec 4.C,
// component E): list() without opening streams, read() with an opened,
// forward-only byte stream per entry. Implementations must not advance
// past the current entry in Read until the callback returns (the
// "end-of-stream drain" requirement) -- both DirectoryReader and
// TarReader satisfy this naturally since they hand the callback a stream
// it must fully consume itself.
type Reader interface {
	// List emits every entry's relative path and is-file/is-dir flag.
	List(fn func(Entry) error) error

	// Read emits every entry with an opened byte stream. fn must drain
	// (or explicitly stop reading, accepting truncation) the stream
	// before returning; the reader does not open the next entry until fn
	// returns.
	Read(fn func(Entry, io.Reader) error) error
}

// ReaderFactory constructs a Reader for the bag at path.
type ReaderFactory func(path string) (Reader, error)

const DirectorySentinel = "directory"

// ReaderRegistry maps a file extension (or DirectorySentinel) to a
// Reader factory (spec 4.C "Selecting a reader"). The built-in set is
// directory and tar; hosts may register additional extensions (e.g. for
// zip, as spec.md's Non-goals note read-side extensibility is in scope
// even though zip write support isn't).
type ReaderRegistry struct {
	factories map[string]ReaderFactory
}

// NewReaderRegistry returns a registry pre-populated with the built-in
// directory and .tar readers.
func NewReaderRegistry() *ReaderRegistry {
	r := &ReaderRegistry{factories: make(map[string]ReaderFactory)}
	r.Register(DirectorySentinel, func(path string) (Reader, error) {
		return NewDirectoryReader(path)
	})
	r.Register(".tar", func(path string) (Reader, error) {
		return NewTarReader(path)
	})
	return r
}

// Register adds or replaces the factory for a key (an extension like
// ".zip", or DirectorySentinel).
func (r *ReaderRegistry) Register(key string, factory ReaderFactory) {
	r.factories[key] = factory
}

// For returns a Reader for path, selecting directory vs. extension-based
// lookup per spec 4.C.
func (r *ReaderRegistry) For(path string, isDir bool) (Reader, error) {
	var key string
	if isDir {
		key = DirectorySentinel
	} else {
		idx := strings.LastIndexByte(path, '.')
		if idx < 0 {
			return nil, errors.Errorf("bagit: cannot determine container format for %q (no extension)", path)
		}
		key = strings.ToLower(path[idx:])
	}
	factory, ok := r.factories[key]
	if !ok {
		return nil, errors.Errorf("bagit: no reader registered for %q", key)
	}
	return factory(path)
}
