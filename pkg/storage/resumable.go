package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	tusVersion = "1.0.0"

	// DefaultChunkMiB is the PATCH chunk size used when none is given.
	DefaultChunkMiB = 1
)

// ResumableUpload drives the TUS resumable upload workflow against the
// storage service's /upload/resumable endpoint. Interrupted uploads can be
// resumed by calling Upload again: the current offset is re-read from the
// server before every chunk.
type ResumableUpload struct {
	client   *Client
	endpoint string
	store    *fileStore
}

func newResumableUpload(c *Client) *ResumableUpload {
	return &ResumableUpload{
		client:   c,
		endpoint: c.baseURL + "/upload/resumable",
		store:    newFileStore(),
	}
}

// CreateLinkOptions name the upload target. Bucket is required, plus at
// least one of ObjectName and FileName. FileName points at a local file
// whose size fixes Upload-Length up front; ObjectName alone defers the
// length until Upload time (Upload-Defer-Length mode). When both are set
// the object is stored under ObjectName rather than the file's base name.
type CreateLinkOptions struct {
	Bucket     string
	ObjectName string
	FileName   string
}

// UploadOptions tune Upload.
type UploadOptions struct {
	// ChunkMiB is the number of MiB sent per PATCH (default DefaultChunkMiB).
	ChunkMiB int
	// DeferLength selects Upload-Defer-Length mode; Link and ObjectName are
	// then required because no file store entry was created from the local
	// file name.
	DeferLength bool
	Link        string
	// ObjectName is the entry created by CreateUniqueLink. Defaults to the
	// base name of the uploaded file.
	ObjectName string
}

// encodeMetadata builds the Upload-Metadata header value: comma-joined
// "key base64(value)" pairs, sorted for stable output.
func encodeMetadata(md map[string]string) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(md))
	for _, k := range keys {
		pairs = append(pairs, k+" "+base64.StdEncoding.EncodeToString([]byte(md[k])))
	}
	return strings.Join(pairs, ",")
}

// Exists reports whether an upload entry is being tracked for name.
func (r *ResumableUpload) Exists(name string) bool {
	return r.store.exists(name)
}

// Link returns the upload link recorded for objectName by CreateUniqueLink.
func (r *ResumableUpload) Link(objectName string) (string, error) {
	info, err := r.store.get(objectName)
	if err != nil {
		return "", err
	}
	return info.link, nil
}

// Expires returns when the server will discard the unfinished upload.
func (r *ResumableUpload) Expires(objectName string) (time.Time, error) {
	info, err := r.store.get(objectName)
	if err != nil {
		return time.Time{}, err
	}
	return info.expiresAt, nil
}

// Probe checks that the resumable upload endpoint answers the protocol's
// OPTIONS discovery request.
func (r *ResumableUpload) Probe(ctx context.Context) error {
	req, err := r.client.newRequest(ctx, "OPTIONS", r.endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Tus-Resumable", tusVersion)

	resp, err := r.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("storage: probe resumable endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}
	return nil
}

// CreateUniqueLink asks the server for an upload link for the target named
// in opts and records it for a later Upload call.
func (r *ResumableUpload) CreateUniqueLink(ctx context.Context, opts CreateLinkOptions) error {
	if opts.Bucket == "" {
		return fmt.Errorf("storage: resumable upload requires a bucket name")
	}
	if opts.ObjectName == "" && opts.FileName == "" {
		return fmt.Errorf("storage: resumable upload requires an object name or a file name")
	}

	name := opts.ObjectName
	if name == "" {
		name = filepath.Base(opts.FileName)
	}

	info := &fileInfo{
		name:    name,
		headers: map[string]string{"Tus-Resumable": tusVersion},
	}

	lengthHeader := "Upload-Defer-Length"
	if opts.FileName != "" {
		stat, err := os.Stat(opts.FileName)
		if err != nil {
			return fmt.Errorf("storage: stat %s: %w", opts.FileName, err)
		}
		lengthHeader = "Upload-Length"
		info.headers[lengthHeader] = strconv.FormatInt(stat.Size(), 10)
		info.length = stat.Size()
	} else {
		info.headers[lengthHeader] = "1"
	}

	info.headers["Upload-Metadata"] = encodeMetadata(map[string]string{
		"bucketName": opts.Bucket,
		"objectName": name,
	})

	req, err := r.client.newRequest(ctx, "POST", r.endpoint, nil)
	if err != nil {
		return err
	}
	for k, v := range info.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("storage: create resumable link: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return newAPIError(resp)
	}

	if expires := resp.Header.Get("Upload-Expires"); expires != "" {
		if t, err := time.Parse(time.RFC1123, expires); err == nil {
			info.expiresAt = t
		}
	}
	info.link = resp.Header.Get("Location")

	// The length mode header applies to link creation only; PATCH requests
	// must not resend it.
	delete(info.headers, lengthHeader)
	r.store.mark(info)
	return nil
}

// Offset asks the server how many bytes of the upload at link it already
// holds.
func (r *ResumableUpload) Offset(ctx context.Context, link string, headers map[string]string) (int64, error) {
	req, err := r.client.newRequest(ctx, "HEAD", link, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("storage: resumable offset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return 0, newAPIError(resp)
	}

	offset, err := strconv.ParseInt(resp.Header.Get("Upload-Offset"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("storage: parse Upload-Offset %q: %w", resp.Header.Get("Upload-Offset"), err)
	}
	return offset, nil
}

// Upload sends the local file in chunks until the server reports the
// upload complete. Before each chunk the current offset is fetched from
// the server, so a partially transferred upload resumes where it left off.
func (r *ResumableUpload) Upload(ctx context.Context, filename string, opts UploadOptions) error {
	if opts.DeferLength && (opts.Link == "" || opts.ObjectName == "") {
		return fmt.Errorf("storage: deferred-length upload requires a link and object name")
	}

	target := opts.ObjectName
	if target == "" {
		target = filepath.Base(filename)
	}
	if opts.DeferLength {
		// Resuming from another process: the link arrived via opts, not via
		// CreateUniqueLink, so register an entry for it.
		if !r.store.exists(target) {
			r.store.mark(&fileInfo{
				name:    target,
				link:    opts.Link,
				headers: map[string]string{"Tus-Resumable": tusVersion},
			})
		}
	}

	chunkMiB := opts.ChunkMiB
	if chunkMiB <= 0 {
		chunkMiB = DefaultChunkMiB
	}
	chunkSize := int64(chunkMiB) << 20

	if err := r.store.setHeader(target, "Content-Type", "application/offset+octet-stream"); err != nil {
		return err
	}

	var link string
	if opts.DeferLength {
		link = opts.Link
		stat, err := os.Stat(filename)
		if err != nil {
			return fmt.Errorf("storage: stat %s: %w", filename, err)
		}
		if err := r.store.setHeader(target, "Upload-Length", strconv.FormatInt(stat.Size(), 10)); err != nil {
			return err
		}
	} else {
		var err error
		link, err = r.Link(target)
		if err != nil {
			return err
		}
	}

	for {
		headers, err := r.store.headers(target)
		if err != nil {
			return err
		}

		offset, err := r.Offset(ctx, link, headers)
		if err != nil {
			return err
		}

		chunk, err := readChunk(filename, offset, chunkSize)
		if err != nil {
			return err
		}

		if err := r.store.setHeader(target, "Upload-Offset", strconv.FormatInt(offset, 10)); err != nil {
			return err
		}

		complete, err := r.patchChunk(ctx, link, target, chunk)
		if err != nil {
			return err
		}
		if complete {
			r.store.remove(target)
			return nil
		}
	}
}

func (r *ResumableUpload) patchChunk(ctx context.Context, link, target string, chunk []byte) (bool, error) {
	headers, err := r.store.headers(target)
	if err != nil {
		return false, err
	}

	req, err := r.client.newRequest(ctx, "PATCH", link, bytes.NewReader(chunk))
	if err != nil {
		return false, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("storage: resumable patch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return false, newAPIError(resp)
	}

	return resp.Header.Get("Tus-Complete") != "", nil
}

// readChunk opens filename at offset and reads up to size bytes.
func readChunk(filename string, offset, size int64) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("storage: seek %s to %d: %w", filename, offset, err)
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("storage: read %s: %w", filename, err)
	}
	return buf[:n], nil
}
