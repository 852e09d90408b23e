//go:build cgo

// Package mimetype guesses a source file's MIME type for the Bagger's
// optional file-type annotation (a supplemented feature from the
// teacher, not named in spec.md). Guessing failures always downgrade to
// a fallback type rather than a bagging error.
//
// Grounded on bagman/mime.go's GuessMimeType.
package mimetype

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/rakyll/magicmime"
)

const fallback = "application/octet-stream"

var (
	once    sync.Once
	magic   *magicmime.Magic
	openErr error

	validMimeType = regexp.MustCompile(`^\w+/\w+$`)
)

// Guess returns absPath's MIME type, or fallback if the magic database
// can't be opened or returns something that doesn't look like a MIME
// type.
func Guess(absPath string) (string, error) {
	once.Do(func() {
		magic, openErr = magicmime.New()
	})
	if openErr != nil {
		return fallback, fmt.Errorf("mimetype: error opening magic database: %w", openErr)
	}
	guessed, err := magic.TypeByFile(absPath)
	if err != nil || guessed == "" || !validMimeType.MatchString(guessed) {
		return fallback, nil
	}
	return guessed, nil
}
