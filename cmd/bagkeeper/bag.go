package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/APTrust/bagkeeper/bagit"
)

var bagCmd = &cobra.Command{
	Use:   "bag",
	Short: "Create or inspect bags",
}

var (
	flagBagDir     string
	flagBagOutput  string
	flagBagProfile string
	flagBagTags    []string
	flagCheckName  bool
)

var bagCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Package a directory into a bag using a BagIt profile",
	Long: `Package a directory into a bag using a specific BagIt profile and
tag values.

For tag values, use the form "file.txt/Tag-Name=value". Omitting the file
name writes to bag-info.txt:

  --tags="aptrust-info.txt/Title=My Bag of Photos"
  --tags="Source-Organization=Faber College"

Quote values containing spaces or shell metacharacters.`,
	Run: func(cmd *cobra.Command, args []string) {
		bagDir := requireFlag(cmd, "bag-dir", "Flag --bag-dir is required.")

		outputDir := flagBagOutput
		if outputDir == "" && activeConfig != nil {
			outputDir = activeConfig.DefaultOutputDirectory
		}
		if outputDir == "" {
			fatalf(exitUserErr, "Flag --output is required (or set DefaultOutputDirectory in --config).")
		}

		profilePath := flagBagProfile
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

		absBagDir, err := filepath.Abs(bagDir)
		if err != nil {
			fatalf(exitUserErr, "Cannot resolve %s to an absolute path: %v", bagDir, err)
		}
		entries, err := sourceEntries(absBagDir)
		if err != nil {
			fatalf(exitUserErr, "Error reading %s: %v", absBagDir, err)
		}

		cfg := bagit.DefaultEngineConfig()
		cfg.Logger = logger

		bagger := bagit.NewBagger(outputDir, profile, cfg)
		bagger.CheckName = flagCheckName
		for _, e := range entries {
			bagger.AddSource(e.abs, e.rel)
		}
		for _, tag := range parseTagFlags(flagBagTags) {
			bagger.SetTag(tag.file, tag.name, tag.value)
		}

		result := bagger.Write()
		if !result.Succeeded() {
			for _, e := range result.Errors {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			os.Exit(exitRuntimeErr)
		}
		fmt.Printf("Wrote bag to %s\n", result.OutputPath)
		os.Exit(exitOK)
	},
}

func init() {
	rootCmd.AddCommand(bagCmd)
	bagCmd.AddCommand(bagCreateCmd)
	bagCreateCmd.Flags().StringVarP(&flagBagProfile, "profile", "p", "", "path to a BagIt profile JSON file")
	bagCreateCmd.Flags().StringVarP(&flagBagDir, "bag-dir", "b", "", "directory of files to package as the bag's payload")
	bagCreateCmd.Flags().StringVarP(&flagBagOutput, "output", "o", "", "output path: a directory, or a path ending in .tar")
	bagCreateCmd.Flags().StringSliceVarP(&flagBagTags, "tags", "t", nil, `tag values, e.g. "bag-info.txt/Source-Organization=Faber College"`)
	bagCreateCmd.Flags().BoolVar(&flagCheckName, "check-name", false, "require the output name to look like domain.tld.bag-name")
}

type sourceEntry struct{ abs, rel string }

func sourceEntries(bagDir string) ([]sourceEntry, error) {
	var entries []sourceEntry
	err := filepath.Walk(bagDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(bagDir, p)
		if err != nil {
			return err
		}
		entries = append(entries, sourceEntry{abs: p, rel: "data/" + filepath.ToSlash(rel)})
		return nil
	})
	return entries, err
}

type tagAssignment struct{ file, name, value string }

// parseTagFlags parses --tags values of the form "file.txt/Name=Value"
// or "Name=Value" (defaulting to bag-info.txt), cleaning quotes the way
// the teacher's partner config parser does.
//
// Grounded on bagman/partnerconfig.go's cleanString (strip a single pair
// of matching leading/trailing quotes).
func parseTagFlags(raw []string) []tagAssignment {
	var out []tagAssignment
	for _, spec := range raw {
		if spec == "" {
			continue
		}
		file, nameValue := "bag-info.txt", spec
		if idx := strings.IndexByte(spec, '/'); idx >= 0 {
			file, nameValue = spec[:idx], spec[idx+1:]
		}
		eq := strings.IndexByte(nameValue, '=')
		if eq < 0 {
			continue
		}
		out = append(out, tagAssignment{
			file:  file,
			name:  nameValue[:eq],
			value: cleanString(nameValue[eq+1:]),
		})
	}
	return out
}

func cleanString(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) ||
			(strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)) {
			return s[1 : len(s)-1]
		}
	}
	return s
}
