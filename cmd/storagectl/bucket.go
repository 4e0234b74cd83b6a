package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// bucketCmd represents the bucket command
var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage test buckets",
	Long:  `Manage storage buckets for test environments.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'bucket' requires a subcommand (create, list, delete, empty)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(bucketCmd)
}
