package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BucketHandle performs object operations within a single bucket. Obtain
// one from Client.From.
type BucketHandle struct {
	ID string

	client *Client
}

// ObjectInfo is a single entry from a List call.
type ObjectInfo struct {
	Name           string                 `json:"name"`
	ID             string                 `json:"id"`
	UpdatedAt      time.Time              `json:"updated_at"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// ObjectDetails is the richer shape returned by Info.
type ObjectDetails struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Version      string                 `json:"version"`
	Size         int64                  `json:"size"`
	ContentType  string                 `json:"content_type"`
	CacheControl string                 `json:"cache_control"`
	ETag         string                 `json:"etag"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"created_at"`
}

// FileOptions control upload behavior.
type FileOptions struct {
	ContentType  string
	CacheControl string
	// Upsert overwrites an existing object instead of failing.
	Upsert bool
}

// SortBy orders List results.
type SortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// ListOptions control List paging and filtering.
type ListOptions struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	SortBy *SortBy `json:"sortBy,omitempty"`
	Search string  `json:"search,omitempty"`
}

// SignedURL is one entry of a CreateSignedURLs response.
type SignedURL struct {
	Path      string `json:"path"`
	SignedURL string `json:"signedURL"`
	Error     string `json:"error,omitempty"`
}

// SignedUploadURL is a pre-authorized upload slot created by
// CreateSignedUploadURL.
type SignedUploadURL struct {
	Path      string
	Token     string
	SignedURL string
}

// escapePath escapes each path segment while preserving separators.
func escapePath(p string) string {
	segments := strings.Split(strings.TrimLeft(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (b *BucketHandle) objectPath(p string) string {
	return "/object/" + url.PathEscape(b.ID) + "/" + escapePath(p)
}

func (b *BucketHandle) put(ctx context.Context, method, path string, r io.Reader, opts *FileOptions) error {
	req, err := b.client.newRequest(ctx, method, path, r)
	if err != nil {
		return err
	}

	if opts == nil {
		opts = &FileOptions{}
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	if opts.CacheControl != "" {
		req.Header.Set("Cache-Control", "max-age="+opts.CacheControl)
	}
	if opts.Upsert {
		req.Header.Set("x-upsert", "true")
	}

	resp, err := b.client.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Upload stores the content of r at path within the bucket.
func (b *BucketHandle) Upload(ctx context.Context, path string, r io.Reader, opts *FileOptions) error {
	return b.put(ctx, "POST", b.objectPath(path), r, opts)
}

// Update replaces an existing object at path.
func (b *BucketHandle) Update(ctx context.Context, path string, r io.Reader, opts *FileOptions) error {
	return b.put(ctx, "PUT", b.objectPath(path), r, opts)
}

// Download retrieves the object content.
func (b *BucketHandle) Download(ctx context.Context, path string) ([]byte, error) {
	req, err := b.client.newRequest(ctx, "GET", b.objectPath(path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read object %s: %w", path, err)
	}
	return data, nil
}

// List returns the objects under prefix.
func (b *BucketHandle) List(ctx context.Context, prefix string, opts *ListOptions) ([]ObjectInfo, error) {
	if opts == nil {
		opts = &ListOptions{Limit: 100, SortBy: &SortBy{Column: "name", Order: "asc"}}
	}
	body := struct {
		Prefix string `json:"prefix"`
		ListOptions
	}{Prefix: prefix, ListOptions: *opts}

	var items []ObjectInfo
	err := b.client.doJSON(ctx, "POST", "/object/list/"+url.PathEscape(b.ID), body, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Move renames an object within the bucket.
func (b *BucketHandle) Move(ctx context.Context, src, dst string) error {
	body := map[string]string{
		"bucketId":       b.ID,
		"sourceKey":      src,
		"destinationKey": dst,
	}
	return b.client.doJSON(ctx, "POST", "/object/move", body, nil)
}

// Copy duplicates an object within the bucket.
func (b *BucketHandle) Copy(ctx context.Context, src, dst string) error {
	body := map[string]string{
		"bucketId":       b.ID,
		"sourceKey":      src,
		"destinationKey": dst,
	}
	return b.client.doJSON(ctx, "POST", "/object/copy", body, nil)
}

// Remove deletes the named objects.
func (b *BucketHandle) Remove(ctx context.Context, paths ...string) error {
	body := map[string][]string{"prefixes": paths}
	return b.client.doJSON(ctx, "DELETE", "/object/"+url.PathEscape(b.ID), body, nil)
}

// Info returns object metadata without downloading the content.
func (b *BucketHandle) Info(ctx context.Context, path string) (*ObjectDetails, error) {
	var details ObjectDetails
	err := b.client.doJSON(ctx, "GET", "/object/info/"+url.PathEscape(b.ID)+"/"+escapePath(path), nil, &details)
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// Exists reports whether an object is present at path.
func (b *BucketHandle) Exists(ctx context.Context, path string) (bool, error) {
	req, err := b.client.newRequest(ctx, "HEAD", b.objectPath(path), nil)
	if err != nil {
		return false, err
	}
	resp, err := b.client.do(req)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		// HEAD responses carry no body to decode; the service answers 400
		// for missing keys on some paths, so treat that as absent too.
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusBadRequest {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	return true, nil
}

// CreateSignedURL returns a time-limited download URL for path.
func (b *BucketHandle) CreateSignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	body := map[string]int64{"expiresIn": int64(expiresIn.Seconds())}
	var out struct {
		SignedURL string `json:"signedURL"`
	}
	err := b.client.doJSON(ctx, "POST", "/object/sign/"+url.PathEscape(b.ID)+"/"+escapePath(path), body, &out)
	if err != nil {
		return "", err
	}
	return b.client.baseURL + out.SignedURL, nil
}

// CreateSignedURLs returns time-limited download URLs for several paths at
// once. Entries for missing objects carry a per-path error instead.
func (b *BucketHandle) CreateSignedURLs(ctx context.Context, paths []string, expiresIn time.Duration) ([]SignedURL, error) {
	body := struct {
		ExpiresIn int64    `json:"expiresIn"`
		Paths     []string `json:"paths"`
	}{int64(expiresIn.Seconds()), paths}

	var out []SignedURL
	if err := b.client.doJSON(ctx, "POST", "/object/sign/"+url.PathEscape(b.ID), body, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].SignedURL != "" {
			out[i].SignedURL = b.client.baseURL + out[i].SignedURL
		}
	}
	return out, nil
}

// CreateSignedUploadURL reserves an upload slot at path and returns the
// token needed to redeem it with UploadToSignedURL.
func (b *BucketHandle) CreateSignedUploadURL(ctx context.Context, path string) (*SignedUploadURL, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := b.client.doJSON(ctx, "POST", "/object/upload/sign/"+url.PathEscape(b.ID)+"/"+escapePath(path), struct{}{}, &out)
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(out.URL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse signed upload url: %w", err)
	}
	token := parsed.Query().Get("token")
	if token == "" {
		return nil, fmt.Errorf("storage: no token in signed upload url %q", out.URL)
	}

	return &SignedUploadURL{
		Path:      path,
		Token:     token,
		SignedURL: b.client.baseURL + out.URL,
	}, nil
}

// UploadToSignedURL uploads content through a previously created signed
// upload slot.
func (b *BucketHandle) UploadToSignedURL(ctx context.Context, path, token string, r io.Reader, opts *FileOptions) error {
	target := "/object/upload/sign/" + url.PathEscape(b.ID) + "/" + escapePath(path) + "?token=" + url.QueryEscape(token)
	return b.put(ctx, "PUT", target, r, opts)
}

// GetPublicURL returns the public URL for an object in a public bucket.
// No request is made; the URL is only useful if the bucket is public.
func (b *BucketHandle) GetPublicURL(path string) string {
	return b.client.baseURL + "/object/public/" + url.PathEscape(b.ID) + "/" + escapePath(path)
}
