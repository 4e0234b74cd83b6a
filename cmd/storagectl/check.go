package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okklaus/storage3-in-go/pkg/config"
	"github.com/okklaus/storage3-in-go/pkg/keys"
	"github.com/okklaus/storage3-in-go/pkg/s3compat"
	"github.com/okklaus/storage3-in-go/pkg/storage"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the project is ready for upload testing",
	Long: `Verify the project is ready for upload testing.

Runs through the setup checklist: configuration is complete, the API key
looks right, the storage API is reachable, the test bucket exists, and
the resumable upload endpoint answers. With --s3 the S3 gateway is also
exercised with a small probe object.

Example:
  storagectl check
  storagectl check --s3`,
	Run: func(cmd *cobra.Command, args []string) {
		withS3, _ := cmd.Flags().GetBool("s3")

		if err := runChecks(withS3); err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("s3", false, "Also verify the S3-compatible gateway")
}

func runChecks(withS3 bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	fmt.Print("Configuration complete... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("fail")
		return err
	}
	fmt.Println("ok")

	checkKey(cfg.SupabaseKey)

	client, err := storage.New(cfg.StorageEndpoint(), cfg.SupabaseKey)
	if err != nil {
		return err
	}

	fmt.Print("Storage API reachable... ")
	if _, err := client.ListBuckets(ctx); err != nil {
		fmt.Println("fail")
		return err
	}
	fmt.Println("ok")

	fmt.Print("Test bucket exists... ")
	switch {
	case cfg.TestBucket == "":
		fmt.Println("skip (TEST_BUCKET not set)")
	default:
		_, err := client.GetBucket(ctx, cfg.TestBucket)
		if storage.IsNotFound(err) {
			fmt.Println("fail")
			return fmt.Errorf("bucket %q not found; create it with: storagectl bucket create", cfg.TestBucket)
		}
		if err != nil {
			fmt.Println("fail")
			return err
		}
		fmt.Println("ok")
	}

	fmt.Print("Resumable upload endpoint... ")
	if err := client.Resumable.Probe(ctx); err != nil {
		fmt.Println("fail")
		return err
	}
	fmt.Println("ok")

	if withS3 {
		if err := checkS3(ctx, cfg.TestBucket); err != nil {
			return err
		}
	}

	fmt.Println("\nReady for upload testing")
	return nil
}

// checkKey inspects the API key claims and warns about the common
// misconfigurations; none of them are fatal because the storage service
// is the final authority on the key.
func checkKey(key string) {
	fmt.Print("API key... ")
	info, err := keys.Inspect(key)
	if err != nil {
		fmt.Println("warn")
		fmt.Printf("  warning: %v\n", err)
		return
	}

	fmt.Printf("ok (role %q", info.Role)
	if info.Ref != "" {
		fmt.Printf(", project %q", info.Ref)
	}
	fmt.Println(")")

	if info.Expired() {
		fmt.Printf("  warning: key expired at %s\n", info.ExpiresAt.Format(time.RFC3339))
	}
	if info.ServiceRole() {
		fmt.Println("  warning: service_role key bypasses row level security; test policies will not be exercised")
	}
}

func checkS3(ctx context.Context, bucket string) error {
	fmt.Print("S3 gateway round trip... ")
	if bucket == "" {
		fmt.Println("fail")
		return fmt.Errorf("TEST_BUCKET is required for the S3 check")
	}

	s3, err := s3compat.NewFromEnv()
	if err != nil {
		fmt.Println("fail")
		return err
	}

	exists, err := s3.BucketExists(ctx, bucket)
	if err != nil {
		fmt.Println("fail")
		return err
	}
	if !exists {
		fmt.Println("fail")
		return fmt.Errorf("bucket %q not visible over S3", bucket)
	}

	if err := s3.RoundTrip(ctx, bucket); err != nil {
		fmt.Println("fail")
		return err
	}
	fmt.Println("ok")
	return nil
}
