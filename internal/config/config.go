// Package config loads host process configuration: where to log, how
// verbosely, and which named profile/output defaults a run should use.
//
// Grounded on bagman/config.go's Config struct and its "named
// configurations in one JSON file, select by name" loading convention,
// trimmed to what a bag-processing host actually needs (the ingest-worker
// fields -- S3 buckets, NSQ topics, Fluctus URLs -- are dropped along
// with the subsystems they configured; see DESIGN.md).
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

// Config is one named configuration loaded from config.json.
type Config struct {
	ActiveConfig string

	// LogDirectory is where log files are written.
	LogDirectory string

	// LogToStderr tees logging to stderr in addition to the log file.
	LogToStderr bool

	// LogLevel is one of github.com/op/go-logging's levels.
	LogLevel logging.Level

	// DefaultOutputDirectory is where `bagkeeper bag create` writes a bag
	// when the caller doesn't pass an explicit output path.
	DefaultOutputDirectory string

	// DefaultProfilePath, if set, is loaded as the profile to validate or
	// bag against when no --profile flag is given.
	DefaultProfilePath string
}

// Load reads path (a JSON object of name -> Config) and returns the
// configuration named by requested.
func Load(path, requested string) (Config, error) {
	all, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, ok := all[requested]
	if !ok {
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		return Config{}, errors.Errorf("config: no configuration named %q (have: %v)", requested, names)
	}
	cfg.ActiveConfig = requested
	return cfg, nil
}

func loadFile(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: cannot read %q", path)
	}
	var all map[string]Config
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, errors.Wrapf(err, "config: cannot parse %q as JSON", path)
	}
	return all, nil
}

// Help writes the names of every configuration in path to stderr, for a
// CLI to show when the requested name doesn't exist.
func Help(path, requested string) {
	all, err := loadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Fprintf(os.Stderr, "Unrecognized configuration %q. Available configurations:\n", requested)
	for name := range all {
		fmt.Fprintln(os.Stderr, " -", name)
	}
}
