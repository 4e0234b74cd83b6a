package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// policyRemoveCmd represents the policy remove command
var policyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Drop the test policies",
	Long: `Drop the temporary test policies. Removing is idempotent: policies
that are already gone are reported and skipped.

Example:
  storagectl policy remove`,
	Run: func(cmd *cobra.Command, args []string) {
		applier, err := newPolicyApplier()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove policies: %v\n", err)
			os.Exit(1)
		}

		results, err := applier.Remove(cmd.Context())
		for _, r := range results {
			fmt.Printf("%-8s %q on %s\n", r.Status, r.Policy.Name, r.Policy.Relation())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to remove policies: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyRemoveCmd)
}
