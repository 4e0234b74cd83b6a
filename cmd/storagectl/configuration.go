package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configurationCmd represents the configuration command
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Inspect the effective configuration",
	Long: `Inspect the effective configuration.

Use the subcommands to view configuration attributes and their sources.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Error: configuration requires a subcommand (show)")
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
}
