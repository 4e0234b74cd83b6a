package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var linkDefPattern = regexp.MustCompile(`(?m)^\[[^\]]+\]:\s+\S+\s*$`)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print one version's changelog entry",
	Long: `Print one version's changelog entry, for use as release notes.

Example:
  changelog extract --version 1.2.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		version, _ := cmd.Flags().GetString("version")

		source, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		doc, err := Parse(source)
		if err != nil {
			return fmt.Errorf("parsing changelog: %w", err)
		}

		entry := doc.Entry(version)
		if entry == nil {
			return fmt.Errorf("version %s not found in changelog", version)
		}

		if entry.Date != "" {
			fmt.Printf("## [%s] - %s\n\n", entry.Version, entry.Date)
		} else {
			fmt.Printf("## [%s]\n\n", entry.Version)
		}
		fmt.Print(dropLinkDefinitions(entry.Body))

		if link, ok := doc.Links[entry.Version]; ok {
			fmt.Printf("\n\n[%s]: %s\n", entry.Version, link)
		} else {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	extractCmd.Flags().StringP("version", "v", "", "Version to extract (required)")
	_ = extractCmd.MarkFlagRequired("version")
	rootCmd.AddCommand(extractCmd)
}

// dropLinkDefinitions strips link definition lines that goldmark folded
// into the last entry's body.
func dropLinkDefinitions(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if !linkDefPattern.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
