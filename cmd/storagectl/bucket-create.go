package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okklaus/storage3-in-go/pkg/storage"
)

// bucketCreateCmd represents the bucket create command
var bucketCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a test bucket",
	Long: `Create a storage bucket for a test run.

Without a name the bucket from TEST_BUCKET is created. With --disposable a
random suffix is appended so parallel test runs don't collide; the chosen
name is printed so it can be exported as TEST_BUCKET.

Example:
  storagectl bucket create
  storagectl bucket create uploads --public
  storagectl bucket create uploads --disposable`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		public, _ := cmd.Flags().GetBool("public")
		disposable, _ := cmd.Flags().GetBool("disposable")

		client, cfg, err := newStorageClient()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create bucket: %v\n", err)
			os.Exit(1)
		}

		name := cfg.TestBucket
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			fmt.Fprintln(os.Stderr, "A bucket name or TEST_BUCKET is required")
			os.Exit(1)
		}
		if disposable {
			name = fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
		}

		err = client.CreateBucket(cmd.Context(), name, &storage.BucketOptions{Public: public})
		if err != nil {
			var apiErr *storage.Error
			if errors.As(err, &apiErr) && apiErr.HTTPStatus == 409 {
				fmt.Printf("Bucket '%s' already exists\n", name)
				return
			}
			fmt.Fprintf(os.Stderr, "Failed to create bucket: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Created bucket '%s'\n", name)
		if disposable {
			fmt.Printf("export TEST_BUCKET=%s\n", name)
		}
	},
}

func init() {
	bucketCmd.AddCommand(bucketCreateCmd)
	bucketCreateCmd.Flags().Bool("public", false, "Make the bucket publicly readable")
	bucketCreateCmd.Flags().Bool("disposable", false, "Append a random suffix to the bucket name")
}
