package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/APTrust/bagkeeper/bagit"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Convert BagIt profiles between the standard JSON schema and bagkeeper's internal form",
}

var profileImportCmd = &cobra.Command{
	Use:   "import <standard-profile.json>",
	Short: "Convert a standard-schema BagIt profile to bagkeeper's internal JSON form",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		profile, err := loadProfile(args[0])
		if err != nil {
			fatalf(exitUserErr, "Error importing profile %s: %v", args[0], err)
		}
		out, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			fatalf(exitRuntimeErr, "Error encoding profile: %v", err)
		}
		fmt.Println(string(out))
		os.Exit(exitOK)
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export <internal-profile.json>",
	Short: "Convert bagkeeper's internal profile JSON to the standard BagIt Profile schema",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fatalf(exitUserErr, "Error reading %s: %v", args[0], err)
		}
		var profile bagit.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			fatalf(exitUserErr, "Error parsing %s: %v", args[0], err)
		}
		out, err := bagit.ExportProfile(&profile)
		if err != nil {
			fatalf(exitRuntimeErr, "Error exporting profile: %v", err)
		}
		fmt.Println(string(out))
		os.Exit(exitOK)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileExportCmd)
}
