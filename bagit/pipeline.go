package bagit

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// FanOut drives the multi-digest pipeline (spec 4.D): one source stream
// per file, fanned out to N hashers plus an optional content parser, with
// a hash-completion barrier callers must Wait() on before running any
// profile check against file.Checksums/file.Parsed.
//
// Per spec 9's design note, this replaces the "poll a counter every
// 50ms" approach with a sync.WaitGroup: Process increments on start,
// decrements when that file's sinks finish draining, and Wait blocks
// until every in-flight file has reached zero. No sleeping, no polling.
type FanOut struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// NewFanOut returns an empty, ready-to-use FanOut.
func NewFanOut() *FanOut {
	return &FanOut{}
}

// Process wires src to one Hasher per algorithm in algorithms (already
// deduplicated by the caller) plus parser, if non-nil. Hashing and
// parsing happen on a background goroutine fed through an io.Pipe, so the
// caller (typically a Reader.Read callback) can move on to the next
// container entry as soon as this file's bytes have been copied into the
// pipe, while the per-file digest/parse completion is tracked by the
// WaitGroup. Process itself blocks until src is fully copied into the
// pipe (satisfying the Reader contract that the stream must be drained
// before the caller returns), but file.Checksums/file.Parsed are not
// guaranteed populated until Wait returns.
func (f *FanOut) Process(file *BagItFile, src io.Reader, algorithms []string, parser Parser) error {
	hashers := make([]*Hasher, len(algorithms))
	sinks := make([]io.Writer, 0, len(algorithms)+1)
	for i, alg := range algorithms {
		hashers[i] = NewHasher(alg)
		sinks = append(sinks, hashers[i])
	}
	if parser != nil {
		sinks = append(sinks, parser)
	}

	pr, pw := io.Pipe()
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer pr.Close()
		mw := io.MultiWriter(sinks...)
		if _, err := io.Copy(mw, pr); err != nil {
			f.recordError(errors.Wrapf(err, "bagit: error hashing %s", file.RelPath))
			return
		}
		for _, h := range hashers {
			file.Checksums[h.Algorithm()] = h.Finish()
		}
		if parser != nil {
			file.Parsed = parser.Finish()
		}
	}()

	_, copyErr := io.Copy(pw, src)
	closeErr := pw.Close()
	if copyErr != nil {
		return errors.Wrapf(copyErr, "bagit: error reading %s", file.RelPath)
	}
	return closeErr
}

// Wait blocks until every Process call so far has finished hashing and
// parsing. No profile check may run before this returns (spec 4.D's
// completion barrier).
func (f *FanOut) Wait() {
	f.wg.Wait()
}

// Errors returns every error recorded by background hashing/parsing
// goroutines, safe to call only after Wait returns.
func (f *FanOut) Errors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

func (f *FanOut) recordError(err error) {
	f.mu.Lock()
	f.errs = append(f.errs, err)
	f.mu.Unlock()
}
