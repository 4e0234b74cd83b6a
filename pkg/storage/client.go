package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is applied to the underlying HTTP client unless the caller
// supplies their own via WithHTTPClient or WithTimeout.
const DefaultTimeout = 20 * time.Second

// Client talks to the Supabase Storage HTTP API. The zero value is not
// usable; construct one with New.
type Client struct {
	baseURL string
	headers map[string]string
	http    *http.Client

	// Resumable drives the TUS resumable upload workflow against
	// {baseURL}/upload/resumable.
	Resumable *ResumableUpload
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHeader sets an extra header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// New returns a client for the storage API rooted at url, typically
// "{SUPABASE_URL}/storage/v1". The API key is sent both as the apiKey
// header and as a bearer token, matching what the hosted service expects.
func New(url, apiKey string, opts ...Option) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("storage: url is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("storage: api key is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(url, "/"),
		headers: map[string]string{
			"apiKey":        apiKey,
			"Authorization": "Bearer " + apiKey,
		},
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Resumable = newResumableUpload(c)
	return c, nil
}

// BaseURL returns the API root the client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// From returns a handle scoped to a single bucket, for object operations.
func (c *Client) From(bucketID string) *BucketHandle {
	return &BucketHandle{ID: bucketID, client: c}
}

// newRequest builds a request with the client's default headers applied.
// path is joined to the base URL unless it is already absolute.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + path
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("storage: build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do sends the request and converts non-2xx responses into *Error. The
// caller owns the response body on success.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 400 {
		defer func() { _ = resp.Body.Close() }()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// doJSON sends a request with an optional JSON body and decodes the JSON
// response into out (which may be nil when the body is irrelevant).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("storage: encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("storage: decode response: %w", err)
	}
	return nil
}
