// Package logging builds the process-wide leveled logger the engine
// consumes through bagit.EngineConfig.Logger.
//
// Grounded on bagman/logger.go's InitLogger: a rotating file writer with
// an optional colored stderr tee, driven by github.com/op/go-logging.
package logging

import (
	"fmt"
	stdlog "log"
	"os"
	"path"
	"path/filepath"

	"github.com/mipearson/rfw"
	"github.com/op/go-logging"
)

// Config controls where and how verbosely a process logs.
type Config struct {
	// LogDirectory is where the rotating log file is written. Empty means
	// the current directory.
	LogDirectory string

	// LogToStderr tees every record to stderr (colored) in addition to
	// the file, for interactive use.
	LogToStderr bool

	// LogLevel is one of github.com/op/go-logging's levels (CRITICAL,
	// ERROR, WARNING, NOTICE, INFO, DEBUG).
	LogLevel logging.Level
}

// AbsLogDirectory resolves LogDirectory to an absolute path, defaulting
// to the current working directory.
func (c Config) AbsLogDirectory() string {
	dir := c.LogDirectory
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		panic(fmt.Sprintf("logging: cannot resolve log directory %q: %v", dir, err))
	}
	return abs
}

// InitLogger creates the process's logger, named after the running
// binary, logging human-readable lines to a rotating file (and
// optionally stderr).
func InitLogger(cfg Config) *logging.Logger {
	processName := path.Base(os.Args[0])
	filename := filepath.Join(cfg.AbsLogDirectory(), processName+".log")
	if cfg.LogDirectory != "" {
		_ = os.MkdirAll(cfg.LogDirectory, 0755)
	}
	writer := rotatingFileWriter(filename)

	log := logging.MustGetLogger(processName)
	format := logging.MustStringFormatter("%{time} [%{level}] %{message}")
	logging.SetFormatter(format)
	logging.SetLevel(cfg.LogLevel, processName)

	fileBackend := logging.NewLogBackend(writer, "", 0)
	if cfg.LogToStderr {
		stderrBackend := logging.NewLogBackend(os.Stderr, "", stdlog.LstdFlags|stdlog.Lshortfile)
		stderrBackend.Color = true
		logging.SetBackend(fileBackend, stderrBackend)
	} else {
		logging.SetBackend(fileBackend)
	}
	return log
}

// DiscardLogger returns a logger that writes nowhere, for use in tests.
func DiscardLogger(module string) *logging.Logger {
	log := logging.MustGetLogger(module)
	logging.SetBackend(logging.NewLogBackend(discard{}, "", 0))
	logging.SetLevel(logging.INFO, module)
	return log
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// rotatingFileWriter opens filename through rfw, which transparently
// reopens the file if an external process (logrotate) renames or
// deletes it out from under the running process.
func rotatingFileWriter(filename string) *rfw.Writer {
	writer, err := rfw.Open(filename, 0644)
	if err != nil {
		panic(fmt.Sprintf("logging: cannot open log file at %s: %v", filename, err))
	}
	return writer
}
