package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// policyCmd represents the policy command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage the temporary test access policies",
	Long: `Manage the temporary row-level-security policies a test project needs.

The policies grant all operations on storage.objects and storage.buckets to
the public role, unconditionally. They exist so the resumable upload test
suite can run against a fresh project; remove them when the run is over.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'policy' requires a subcommand (apply, remove, show, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)
}
