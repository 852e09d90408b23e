package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/APTrust/bagkeeper/bagit"
)

var (
	flagProfilePath      string
	flagDisableSerCheck  bool
	flagSlowMotionMillis int
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a bag (directory or .tar) against a BagIt profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bagPath := args[0]
		profilePath := flagProfilePath
		if profilePath == "" && activeConfig != nil {
			profilePath = activeConfig.DefaultProfilePath
		}
		if profilePath == "" {
			fatalf(exitUserErr, "Flag --profile is required (or set DefaultProfilePath in --config).")
		}

		profile, err := loadProfile(profilePath)
		if err != nil {
			fatalf(exitUserErr, "Error loading profile %s: %v", profilePath, err)
		}

		cfg := bagit.DefaultEngineConfig()
		cfg.Logger = logger
		cfg.DisableSerializationCheck = flagDisableSerCheck
		if flagSlowMotionMillis > 0 {
			cfg.SlowMotionDelay = time.Duration(flagSlowMotionMillis) * time.Millisecond
		}

		validator := bagit.NewValidator(bagPath, profile, cfg)
		result := validator.Validate()

		if result.Valid() {
			fmt.Printf("%s is valid according to profile %s\n", bagPath, profile.Name)
			os.Exit(exitOK)
		}
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(exitValidationErrs)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&flagProfilePath, "profile", "p", "", "path to a BagIt profile JSON file")
	validateCmd.Flags().BoolVar(&flagDisableSerCheck, "disable-serialization-check", false, "skip the serialization check")
	validateCmd.Flags().IntVar(&flagSlowMotionMillis, "slow-motion-delay-ms", 0, "yield this many milliseconds between files, for UI pacing")
}

func loadProfile(path string) (*bagit.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bagit.ImportProfile(data, path)
}
