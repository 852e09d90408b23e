package bagit

import "time"

// Logger is the narrow logging sink the engine consumes (spec 6.5,
// 9 design note: "the source's Context... becomes an explicit
// EngineConfig struct"). internal/logging's wrapper around
// github.com/op/go-logging satisfies this without the engine importing
// go-logging directly.
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

// nullLogger discards everything; used when EngineConfig.Logger is nil.
type nullLogger struct{}

func (nullLogger) Info(...interface{})             {}
func (nullLogger) Infof(string, ...interface{})    {}
func (nullLogger) Warning(...interface{})          {}
func (nullLogger) Warningf(string, ...interface{}) {}
func (nullLogger) Error(...interface{})            {}
func (nullLogger) Errorf(string, ...interface{})   {}

// EngineConfig threads host configuration through Validator/Bagger
// constructors instead of relying on globals (spec 9 design note).
type EngineConfig struct {
	Logger Logger

	// SlowMotionDelay, if > 0, is the amount of time the engine yields
	// between opening each file; used for UI pacing (spec 6.5). Zero
	// means no delay.
	SlowMotionDelay time.Duration

	// DisableSerializationCheck skips the spec 4.E.1 phase entirely.
	DisableSerializationCheck bool

	// Readers selects which container formats can be opened. A nil
	// value causes DefaultEngineConfig's registry to be used.
	Readers *ReaderRegistry
}

// DefaultEngineConfig returns a config with a null logger and the
// built-in directory/tar reader registry.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Logger:  nullLogger{},
		Readers: NewReaderRegistry(),
	}
}

func (c *EngineConfig) logger() Logger {
	if c == nil || c.Logger == nil {
		return nullLogger{}
	}
	return c.Logger
}

func (c *EngineConfig) readers() *ReaderRegistry {
	if c == nil || c.Readers == nil {
		return NewReaderRegistry()
	}
	return c.Readers
}
