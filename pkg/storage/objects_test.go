package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBucket returns a handle on a freshly created bucket.
func newTestBucket(t *testing.T, client *Client, id string, public bool) *BucketHandle {
	t.Helper()
	require.NoError(t, client.CreateBucket(context.Background(), id, &BucketOptions{Public: public}))
	return client.From(id)
}

func TestUploadDownload(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	content := []byte("hello storage")
	require.NoError(t, bucket.Upload(ctx, "greetings/hello.txt", bytes.NewReader(content), &FileOptions{
		ContentType: "text/plain",
	}))

	got, err := bucket.Download(ctx, "greetings/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestUploadDuplicateWithoutUpsert(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	require.NoError(t, bucket.Upload(ctx, "a.txt", bytes.NewReader([]byte("one")), nil))

	err := bucket.Upload(ctx, "a.txt", bytes.NewReader([]byte("two")), nil)
	require.Error(t, err)

	// Upsert replaces instead.
	require.NoError(t, bucket.Upload(ctx, "a.txt", bytes.NewReader([]byte("two")), &FileOptions{Upsert: true}))

	got, err := bucket.Download(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestUpdate(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	require.NoError(t, bucket.Upload(ctx, "a.txt", bytes.NewReader([]byte("one")), nil))
	require.NoError(t, bucket.Update(ctx, "a.txt", bytes.NewReader([]byte("two")), nil))

	got, err := bucket.Download(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestExists(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	ok, err := bucket.Exists(ctx, "nope.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, bucket.Upload(ctx, "yes.txt", bytes.NewReader([]byte("x")), nil))

	ok, err = bucket.Exists(ctx, "yes.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInfo(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	require.NoError(t, bucket.Upload(ctx, "doc.pdf", bytes.NewReader([]byte("pdf-bytes")), &FileOptions{
		ContentType: "application/pdf",
	}))

	details, err := bucket.Info(ctx, "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", details.Name)
	assert.Equal(t, int64(9), details.Size)
	assert.Equal(t, "application/pdf", details.ContentType)

	_, err = bucket.Info(ctx, "missing.pdf")
	assert.True(t, IsNotFound(err))
}

func TestList(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	for _, path := range []string{"a.txt", "b.txt", "nested/c.txt", "nested/deep/d.txt"} {
		require.NoError(t, bucket.Upload(ctx, path, bytes.NewReader([]byte("x")), nil))
	}

	// Top level: two files plus the "nested" folder entry.
	items, err := bucket.List(ctx, "", nil)
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "nested"}, names)

	// Under the prefix: one file plus the "deep" folder.
	items, err = bucket.List(ctx, "nested", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c.txt", items[0].Name)
	assert.Equal(t, "deep", items[1].Name)

	// Search filters by substring.
	items, err = bucket.List(ctx, "", &ListOptions{Limit: 100, Search: "b."})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b.txt", items[0].Name)
}

func TestListPaging(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	for _, path := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, bucket.Upload(ctx, path, bytes.NewReader([]byte("x")), nil))
	}

	items, err := bucket.List(ctx, "", &ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = bucket.List(ctx, "", &ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c.txt", items[0].Name)
}

func TestMoveAndCopy(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	require.NoError(t, bucket.Upload(ctx, "src.txt", bytes.NewReader([]byte("data")), nil))

	require.NoError(t, bucket.Copy(ctx, "src.txt", "copy.txt"))
	ok, err := bucket.Exists(ctx, "src.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, bucket.Move(ctx, "src.txt", "moved.txt"))
	ok, err = bucket.Exists(ctx, "src.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, path := range []string{"copy.txt", "moved.txt"} {
		got, err := bucket.Download(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), got)
	}
}

func TestRemove(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	require.NoError(t, bucket.Upload(ctx, "a.txt", bytes.NewReader([]byte("x")), nil))
	require.NoError(t, bucket.Upload(ctx, "b.txt", bytes.NewReader([]byte("x")), nil))

	require.NoError(t, bucket.Remove(ctx, "a.txt", "b.txt"))

	ok, err := bucket.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateSignedURL(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	content := []byte("signed content")
	require.NoError(t, bucket.Upload(ctx, "private.txt", bytes.NewReader(content), nil))

	signed, err := bucket.CreateSignedURL(ctx, "private.txt", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, signed, "token=")

	// The signed URL works without any auth headers.
	resp, err := http.Get(signed)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = bucket.CreateSignedURL(ctx, "missing.txt", time.Minute)
	assert.True(t, IsNotFound(err))
}

func TestCreateSignedURLs(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	require.NoError(t, bucket.Upload(ctx, "here.txt", bytes.NewReader([]byte("x")), nil))

	out, err := bucket.CreateSignedURLs(ctx, []string{"here.txt", "gone.txt"}, time.Minute)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.NotEmpty(t, out[0].SignedURL)
	assert.Empty(t, out[0].Error)
	assert.Empty(t, out[1].SignedURL)
	assert.NotEmpty(t, out[1].Error)
}

func TestSignedUpload(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	slot, err := bucket.CreateSignedUploadURL(ctx, "incoming.txt")
	require.NoError(t, err)
	assert.NotEmpty(t, slot.Token)

	content := []byte("uploaded via slot")
	require.NoError(t, bucket.UploadToSignedURL(ctx, "incoming.txt", slot.Token, bytes.NewReader(content), nil))

	got, err := bucket.Download(ctx, "incoming.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSignedUploadBadToken(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)

	err := bucket.UploadToSignedURL(context.Background(), "incoming.txt", "bogus", bytes.NewReader([]byte("x")), nil)
	assert.Error(t, err)
}

func TestGetPublicURL(t *testing.T) {
	client := newTestClient(t)
	public := newTestBucket(t, client, "public-files", true)
	private := newTestBucket(t, client, "private-files", false)
	ctx := context.Background()

	content := []byte("public content")
	require.NoError(t, public.Upload(ctx, "open.txt", bytes.NewReader(content), nil))
	require.NoError(t, private.Upload(ctx, "closed.txt", bytes.NewReader(content), nil))

	resp, err := http.Get(public.GetPublicURL("open.txt"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Private buckets don't serve the public path.
	resp, err = http.Get(private.GetPublicURL("closed.txt"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEscapedPaths(t *testing.T) {
	client := newTestClient(t)
	bucket := newTestBucket(t, client, "files", false)
	ctx := context.Background()

	content := []byte("odd name")
	require.NoError(t, bucket.Upload(ctx, "folder/with space.txt", bytes.NewReader(content), nil))

	got, err := bucket.Download(ctx, "folder/with space.txt")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
