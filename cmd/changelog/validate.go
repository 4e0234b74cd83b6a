package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

// Problem is one validation finding. Line 0 means the problem applies to
// the file as a whole.
type Problem struct {
	Line    int
	Message string
}

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	changeTypes = map[string]bool{
		"Added":      true,
		"Changed":    true,
		"Deprecated": true,
		"Removed":    true,
		"Fixed":      true,
		"Security":   true,
	}
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the changelog against the Keep a Changelog format",
	Long: `Validate the changelog against the Keep a Changelog format.

Checks the title, the [Unreleased] section, version heading shape
(## [X.Y.Z] - YYYY-MM-DD), the change type headings, and that every
version has a link definition.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		source, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		problems := Validate(source)
		if len(problems) == 0 {
			fmt.Println("Changelog is valid")
			return nil
		}

		fmt.Printf("Found %d issue(s):\n\n", len(problems))
		for _, p := range problems {
			if p.Line > 0 {
				fmt.Printf("  Line %d: %s\n", p.Line, p.Message)
			} else {
				fmt.Printf("  %s\n", p.Message)
			}
		}
		os.Exit(1)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	rootCmd.AddCommand(validateCmd)
}

// Validate reports every format problem in the changelog at once.
func Validate(source []byte) []Problem {
	var problems []Problem
	flag := func(line int, format string, args ...interface{}) {
		problems = append(problems, Problem{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	hasTitle := false
	hasUnreleased := false
	var versions []string

	for i, raw := range strings.Split(string(source), "\n") {
		line := i + 1
		trimmed := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(trimmed, "### "):
			if kind := strings.TrimPrefix(trimmed, "### "); !changeTypes[kind] {
				flag(line, "Invalid change type %q. Valid types: Added, Changed, Deprecated, Removed, Fixed, Security", kind)
			}

		case strings.HasPrefix(trimmed, "## ["):
			end := strings.Index(trimmed, "]")
			if end <= 4 {
				continue
			}
			version := trimmed[4:end]
			if strings.EqualFold(version, "unreleased") {
				hasUnreleased = true
				continue
			}
			versions = append(versions, version)
			if !versionPattern.MatchString(version) {
				flag(line, "Version %q should follow semantic versioning (X.Y.Z)", version)
			}
			rest := strings.TrimSpace(trimmed[end+1:])
			if date, ok := strings.CutPrefix(rest, "- "); ok {
				if !datePattern.MatchString(strings.TrimSpace(date)) {
					flag(line, "Date %q should be in ISO 8601 format (YYYY-MM-DD)", strings.TrimSpace(date))
				}
			} else {
				flag(line, "Version %q is missing a release date", version)
			}

		case strings.HasPrefix(trimmed, "# "):
			hasTitle = true
			if !strings.Contains(strings.ToLower(trimmed), "changelog") {
				flag(line, "Title should contain 'Changelog'")
			}
		}
	}

	if !hasTitle {
		flag(0, "Missing changelog title (# Changelog)")
	}
	if !hasUnreleased {
		flag(0, "Missing [Unreleased] section")
	}

	if doc, err := Parse(source); err == nil {
		for _, version := range versions {
			if _, ok := doc.Links[version]; !ok {
				flag(0, "Missing link definition for version [%s]", version)
			}
		}
		if hasUnreleased {
			if _, ok := doc.Links["Unreleased"]; !ok {
				flag(0, "Missing link definition for [Unreleased]")
			}
		}
	}

	return problems
}
