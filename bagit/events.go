package bagit

// TaskKind enumerates the progress-event kinds the Validator/Bagger emit
// (spec 4.E "task(kind, relPath, message, percent)").
type TaskKind string

const (
	TaskStart    TaskKind = "start"
	TaskAdd      TaskKind = "add"
	TaskChecksum TaskKind = "checksum"
	TaskRead     TaskKind = "read"
)

// EventObserver is the narrow event-delivery contract (spec 9 design
// note: "present as a narrow observer interface {on_task, on_error,
// on_end}; do not rely on language-level event emitters"). Embedding
// NoopObserver gives a zero-value-usable default.
type EventObserver interface {
	OnValidateStart(path string)
	OnTask(kind TaskKind, relPath, message string, percent float64)
	OnError(err error)
	OnEnd()
}

// NoopObserver implements EventObserver with no-ops; embed it to get a
// default for whichever methods a caller doesn't care about.
type NoopObserver struct{}

func (NoopObserver) OnValidateStart(string)                            {}
func (NoopObserver) OnTask(TaskKind, string, string, float64)          {}
func (NoopObserver) OnError(error)                                     {}
func (NoopObserver) OnEnd()                                            {}

// observerOrNoop returns o if non-nil, otherwise a usable no-op observer.
func observerOrNoop(o EventObserver) EventObserver {
	if o == nil {
		return NoopObserver{}
	}
	return o
}
