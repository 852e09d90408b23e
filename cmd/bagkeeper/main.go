// Command bagkeeper validates and creates BagIt bags against a
// declarative profile.
//
// Grounded on APTrust-partner-tools/cmd's cobra.Command structure
// (bag_create.go, s3download.go) and its exit-code convention.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra only returns here for flag/usage errors; it has already
		// printed the message.
		os.Exit(exitUserErr)
	}
}
