package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// policyApplyCmd represents the policy apply command
var policyApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the test policies",
	Long: `Create the temporary test policies on storage.objects and
storage.buckets. Applying is idempotent: policies that already exist are
reported and left alone.

Requires DATABASE_URL to point at the project's Postgres instance.

Example:
  storagectl policy apply`,
	Run: func(cmd *cobra.Command, args []string) {
		applier, err := newPolicyApplier()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply policies: %v\n", err)
			os.Exit(1)
		}

		results, err := applier.Apply(cmd.Context())
		for _, r := range results {
			fmt.Printf("%-8s %q on %s\n", r.Status, r.Policy.Name, r.Policy.Relation())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply policies: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Policies applied. Remember to run 'storagectl policy remove' after the test run.")
	},
}

func init() {
	policyCmd.AddCommand(policyApplyCmd)
}
