package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// bucketListCmd represents the bucket list command
var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buckets",
	Long: `List every bucket the configured key can see.

Example:
  storagectl bucket list`,
	Run: func(cmd *cobra.Command, args []string) {
		client, _, err := newStorageClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list buckets: %v\n", err)
			os.Exit(1)
		}

		buckets, err := client.ListBuckets(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list buckets: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPUBLIC\tCREATED")
		for _, b := range buckets {
			fmt.Fprintf(w, "%s\t%v\t%s\n", b.ID, b.Public, b.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		_ = w.Flush()
	},
}

func init() {
	bucketCmd.AddCommand(bucketListCmd)
}
