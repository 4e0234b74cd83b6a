// Package s3compat checks a storage project's S3-compatible endpoint.
//
// The hosted storage service exposes buckets over the S3 protocol at
// {project}/storage/v1/s3 with dedicated access keys. This is a separate
// auth path from the REST API, so "storagectl check --s3" verifies it
// independently with a put/get/remove round trip.
package s3compat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps a minio client pointed at the storage S3 gateway.
type Client struct {
	mc *minio.Client
}

// NewFromEnv builds a client from the S3 interop environment variables:
// STORAGE_S3_ENDPOINT, STORAGE_S3_ACCESS_KEY, STORAGE_S3_SECRET_KEY and
// optionally STORAGE_S3_REGION.
func NewFromEnv() (*Client, error) {
	endpoint := os.Getenv("STORAGE_S3_ENDPOINT")
	accessKey := os.Getenv("STORAGE_S3_ACCESS_KEY")
	secretKey := os.Getenv("STORAGE_S3_SECRET_KEY")
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("s3compat: STORAGE_S3_ENDPOINT, STORAGE_S3_ACCESS_KEY and STORAGE_S3_SECRET_KEY are required")
	}
	return New(endpoint, accessKey, secretKey, os.Getenv("STORAGE_S3_REGION"), true)
}

// New builds a client for the given endpoint and static credentials.
func New(endpoint, accessKey, secretKey, region string, secure bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3compat: init client: %w", err)
	}
	return &Client{mc: mc}, nil
}

// BucketExists reports whether the bucket is visible over S3.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	exists, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("s3compat: check bucket %q: %w", bucket, err)
	}
	return exists, nil
}

// RoundTrip uploads a small probe object, reads it back, and removes it.
// A passing round trip means credentials, bucket access, and both data
// paths work through the S3 gateway.
func (c *Client) RoundTrip(ctx context.Context, bucket string) error {
	key := ".storagectl-probe-" + uuid.NewString()
	payload := []byte(time.Now().UTC().Format(time.RFC3339))

	_, err := c.mc.PutObject(ctx, bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("s3compat: put probe object: %w", err)
	}
	defer func() {
		_ = c.mc.RemoveObject(context.Background(), bucket, key, minio.RemoveObjectOptions{})
	}()

	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("s3compat: get probe object: %w", err)
	}
	defer func() { _ = obj.Close() }()

	echoed, err := io.ReadAll(obj)
	if err != nil {
		return fmt.Errorf("s3compat: read probe object: %w", err)
	}
	if !bytes.Equal(echoed, payload) {
		return fmt.Errorf("s3compat: probe object corrupted in transit")
	}
	return nil
}
