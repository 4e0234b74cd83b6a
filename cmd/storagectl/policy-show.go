package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okklaus/storage3-in-go/pkg/policy"
)

// policyShowCmd represents the policy show command
var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the test policy SQL",
	Long: `Print the CREATE POLICY statements that 'policy apply' runs. With
--applied, also query the database and report which are currently present.

Example:
  storagectl policy show
  storagectl policy show --applied`,
	Run: func(cmd *cobra.Command, args []string) {
		applied, _ := cmd.Flags().GetBool("applied")

		var present map[string]bool
		if applied {
			applier, err := newPolicyApplier()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to show policies: %v\n", err)
				os.Exit(1)
			}
			present, err = applier.Applied(cmd.Context())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to show policies: %v\n", err)
				os.Exit(1)
			}
		}

		for i, t := range policy.Templates() {
			if i > 0 {
				fmt.Println()
			}
			fmt.Println(t.CreateSQL())
			if applied {
				fmt.Printf("-- currently applied: %v\n", present[t.Name])
			}
		}
	},
}

func init() {
	policyCmd.AddCommand(policyShowCmd)
	policyShowCmd.Flags().Bool("applied", false, "Query the database for current state")
}
