package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/okklaus/storage3-in-go/pkg/emulator"
)

// emulatorCmd represents the emulator command
var emulatorCmd = &cobra.Command{
	Use:   "emulator",
	Short: "Run a local storage API emulator",
	Long: `Run a local storage API emulator.

The emulator speaks the bucket, object and resumable upload endpoints of
the hosted storage service, backed by memory. Point SUPABASE_URL at it
to develop and test without a real project:

  export SUPABASE_URL=http://localhost:8000
  export SUPABASE_KEY=local

Example:
  storagectl emulator
  storagectl emulator --addr :9000`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		log := logrus.New()
		if os.Getenv("STORAGE_LOG_LEVEL") == "debug" {
			log.SetLevel(logrus.DebugLevel)
		}

		if err := emulator.New(log).ListenAndServe(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Emulator failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emulatorCmd)
	emulatorCmd.Flags().String("addr", ":8000", "Listen address")
}
