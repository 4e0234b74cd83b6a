package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okklaus/storage3-in-go/pkg/storage"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Resumably upload a file to the test bucket",
	Long: `Resumably upload a file to the test bucket.

The file is sent through the resumable upload endpoint in chunks.
An interrupted upload resumes from the server's recorded offset when the
command is re-run with --defer-length and the link printed by the first
attempt.

Example:
  storagectl upload ./video.mp4
  storagectl upload ./video.mp4 --chunk-mb 6
  storagectl upload ./video.mp4 --defer-length --link https://...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		chunkMiB, _ := cmd.Flags().GetInt("chunk-mb")
		deferLength, _ := cmd.Flags().GetBool("defer-length")
		link, _ := cmd.Flags().GetString("link")
		object, _ := cmd.Flags().GetString("object")

		if err := runUpload(args[0], chunkMiB, deferLength, link, object); err != nil {
			fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().Int("chunk-mb", storage.DefaultChunkMiB, "Chunk size in MiB per request")
	uploadCmd.Flags().Bool("defer-length", false, "Defer the upload length until the first chunk")
	uploadCmd.Flags().String("link", "", "Existing upload link to resume (defer-length mode)")
	uploadCmd.Flags().String("object", "", "Object name in the bucket (default: file base name)")
}

func runUpload(filename string, chunkMiB int, deferLength bool, link, object string) error {
	client, cfg, err := newStorageClient()
	if err != nil {
		return err
	}
	if cfg.TestBucket == "" {
		return fmt.Errorf("TEST_BUCKET environment variable is required")
	}

	if object == "" {
		object = filepath.Base(filename)
	}

	ctx := context.Background()

	if link == "" {
		createOpts := storage.CreateLinkOptions{Bucket: cfg.TestBucket, ObjectName: object}
		if !deferLength {
			createOpts.FileName = filename
		}
		if err := client.Resumable.CreateUniqueLink(ctx, createOpts); err != nil {
			return err
		}

		link, err = client.Resumable.Link(object)
		if err != nil {
			return err
		}
		fmt.Printf("Upload link: %s\n", link)
		if expires, err := client.Resumable.Expires(object); err == nil && !expires.IsZero() {
			fmt.Printf("Expires: %s\n", expires.Format("2006-01-02 15:04:05 MST"))
		}
	}

	opts := storage.UploadOptions{ChunkMiB: chunkMiB, ObjectName: object}
	if deferLength {
		opts.DeferLength = true
		opts.Link = link
	}

	if err := client.Resumable.Upload(ctx, filename, opts); err != nil {
		return fmt.Errorf("%w\nresume with: storagectl upload %s --defer-length --link %s --object %s", err, filename, link, object)
	}

	fmt.Printf("Uploaded %s to bucket %q as %q\n", filename, cfg.TestBucket, object)
	return nil
}
