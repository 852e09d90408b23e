//go:build !cgo

package mimetype

const fallback = "application/octet-stream"

// Guess always returns fallback in a non-cgo build, since libmagic isn't
// available without cgo.
func Guess(absPath string) (string, error) {
	return fallback, nil
}
