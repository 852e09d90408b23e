package main

import (
	"fmt"
	"os"

	golog "github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/APTrust/bagkeeper/internal/config"
	"github.com/APTrust/bagkeeper/internal/logging"
)

// Exit codes (spec 6.4): 0 success, 1 completed with validation errors,
// 2 invalid parameters, 3 runtime error.
//
// Grounded on APTrust-partner-tools/cmd/s3download.go's
// EXIT_OK/EXIT_USER_ERR/EXIT_REQUEST_ERROR/EXIT_RUNTIME_ERR constants.
const (
	exitOK             = 0
	exitValidationErrs = 1
	exitUserErr        = 2
	exitRuntimeErr     = 3
)

var (
	flagLogDir     string
	flagLogStderr  bool
	flagVerbose    bool
	flagConfigPath string
	flagConfigName string

	logger *golog.Logger

	// activeConfig is the named configuration loaded from --config, if any.
	// validate.go and bag.go fall back to its DefaultProfilePath /
	// DefaultOutputDirectory when the corresponding flag is left empty.
	activeConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bagkeeper",
	Short: "Validate and create BagIt bags against a declarative profile",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagConfigPath != "" {
			cfg, err := config.Load(flagConfigPath, flagConfigName)
			if err != nil {
				config.Help(flagConfigPath, flagConfigName)
				fatalf(exitUserErr, "Error loading configuration: %v", err)
			}
			activeConfig = &cfg
			if !cmd.Flags().Changed("log-dir") && cfg.LogDirectory != "" {
				flagLogDir = cfg.LogDirectory
			}
			if !cmd.Flags().Changed("log-stderr") && cfg.LogToStderr {
				flagLogStderr = true
			}
		}

		level := golog.NOTICE
		if activeConfig != nil && activeConfig.LogLevel != 0 {
			level = activeConfig.LogLevel
		}
		if flagVerbose {
			level = golog.DEBUG
		}
		logger = logging.InitLogger(logging.Config{
			LogDirectory: flagLogDir,
			LogToStderr:  flagLogStderr,
			LogLevel:     level,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogDir, "log-dir", "", "directory to write bagkeeper.log into (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&flagLogStderr, "log-stderr", false, "also log to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a named-configuration JSON file (see internal/config)")
	rootCmd.PersistentFlags().StringVar(&flagConfigName, "config-name", "default", "which named configuration to load from --config")
}

// requireFlag returns a flag's string value, or prints msg to stderr and
// exits exitUserErr if it's empty.
func requireFlag(cmd *cobra.Command, name, msg string) string {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(exitUserErr)
	}
	return v
}

func fatalf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
