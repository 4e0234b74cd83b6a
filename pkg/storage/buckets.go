package storage

import (
	"context"
	"net/url"
	"time"
)

// Bucket describes a storage bucket as reported by the API.
type Bucket struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Owner            string    `json:"owner"`
	Public           bool      `json:"public"`
	FileSizeLimit    *int64    `json:"file_size_limit,omitempty"`
	AllowedMimeTypes []string  `json:"allowed_mime_types,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BucketOptions are the mutable attributes of a bucket.
type BucketOptions struct {
	Public           bool     `json:"public"`
	FileSizeLimit    *int64   `json:"file_size_limit,omitempty"`
	AllowedMimeTypes []string `json:"allowed_mime_types,omitempty"`
}

// ListBuckets retrieves all buckets the key can see.
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	if err := c.doJSON(ctx, "GET", "/bucket", nil, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// GetBucket retrieves a single bucket by id.
func (c *Client) GetBucket(ctx context.Context, id string) (*Bucket, error) {
	var bucket Bucket
	if err := c.doJSON(ctx, "GET", "/bucket/"+url.PathEscape(id), nil, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

// CreateBucket creates a bucket. opts may be nil for a private bucket with
// no limits.
func (c *Client) CreateBucket(ctx context.Context, id string, opts *BucketOptions) error {
	if opts == nil {
		opts = &BucketOptions{}
	}
	body := struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		BucketOptions
	}{ID: id, Name: id, BucketOptions: *opts}

	return c.doJSON(ctx, "POST", "/bucket", body, nil)
}

// UpdateBucket changes a bucket's options.
func (c *Client) UpdateBucket(ctx context.Context, id string, opts BucketOptions) error {
	return c.doJSON(ctx, "PUT", "/bucket/"+url.PathEscape(id), opts, nil)
}

// EmptyBucket removes every object in the bucket, leaving the bucket itself.
func (c *Client) EmptyBucket(ctx context.Context, id string) error {
	return c.doJSON(ctx, "POST", "/bucket/"+url.PathEscape(id)+"/empty", struct{}{}, nil)
}

// DeleteBucket deletes a bucket. The service rejects deletion of non-empty
// buckets; call EmptyBucket first.
func (c *Client) DeleteBucket(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/bucket/"+url.PathEscape(id), struct{}{}, nil)
}
