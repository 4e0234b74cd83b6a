package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storagectl",
	Short: "Provision and exercise storage test environments",
	Long: `storagectl automates the setup a storage resumable-upload test run needs:
create a test bucket, apply the temporary access policies, validate the
environment, and drive a resumable upload.

Configuration comes from the environment (SUPABASE_URL, SUPABASE_KEY,
TEST_BUCKET, DATABASE_URL), optionally via a .env file or storage.yml.`,
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to storage.yml (default: ./storage.yml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
