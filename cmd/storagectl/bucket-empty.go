package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// bucketEmptyCmd represents the bucket empty command
var bucketEmptyCmd = &cobra.Command{
	Use:   "empty <name>",
	Short: "Remove every object from a bucket",
	Long: `Remove every object from a bucket, leaving the bucket in place.

Example:
  storagectl bucket empty uploads`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, _, err := newStorageClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to empty bucket: %v\n", err)
			os.Exit(1)
		}

		if err := client.EmptyBucket(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to empty bucket: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Emptied bucket '%s'\n", args[0])
	},
}

func init() {
	bucketCmd.AddCommand(bucketEmptyCmd)
}
