package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// bucketDeleteCmd represents the bucket delete command
var bucketDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a bucket",
	Long: `Delete a bucket. Non-empty buckets are rejected by the service;
pass --force to empty the bucket first.

Example:
  storagectl bucket delete uploads
  storagectl bucket delete uploads --force`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]
		force, _ := cmd.Flags().GetBool("force")

		client, _, err := newStorageClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete bucket: %v\n", err)
			os.Exit(1)
		}

		if force {
			if err := client.EmptyBucket(cmd.Context(), name); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to empty bucket: %v\n", err)
				os.Exit(1)
			}
		}

		if err := client.DeleteBucket(cmd.Context(), name); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete bucket: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted bucket '%s'\n", name)
	},
}

func init() {
	bucketCmd.AddCommand(bucketDeleteCmd)
	bucketDeleteCmd.Flags().Bool("force", false, "Empty the bucket before deleting it")
}
