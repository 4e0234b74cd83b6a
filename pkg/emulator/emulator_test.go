package emulator

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func createBucket(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	body := strings.NewReader(`{"id": "` + id + `", "name": "` + id + `"}`)
	resp, err := http.Post(srv.URL+"/bucket", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorBodyShape(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/bucket/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		StatusCode string `json:"statusCode"`
		Error      string `json:"error"`
		Message    string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "404", body.StatusCode)
	assert.Equal(t, "not_found", body.Error)
	assert.NotEmpty(t, body.Message)
}

func TestStorageV1PrefixServed(t *testing.T) {
	srv := newTestServer(t)
	createBucket(t, srv, "prefixed")

	resp, err := http.Get(srv.URL + "/storage/v1/bucket/prefixed")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTUSCreateRequiresProtocolHeader(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest("POST", srv.URL+"/upload/resumable", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestTUSCreateIssuesLinkAndExpiry(t *testing.T) {
	srv := newTestServer(t)
	createBucket(t, srv, "videos")

	enc := base64.StdEncoding
	metadata := "bucketName " + enc.EncodeToString([]byte("videos")) +
		",objectName " + enc.EncodeToString([]byte("clip.mp4"))

	req, err := http.NewRequest("POST", srv.URL+"/upload/resumable", nil)
	require.NoError(t, err)
	req.Header.Set("Tus-Resumable", "1.0.0")
	req.Header.Set("Upload-Length", "4")
	req.Header.Set("Upload-Metadata", metadata)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/upload/resumable/")

	expires, err := time.Parse(time.RFC1123, resp.Header.Get("Upload-Expires"))
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	// Completing the upload stores the object.
	patch, err := http.NewRequest("PATCH", resp.Header.Get("Location"), bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	patch.Header.Set("Tus-Resumable", "1.0.0")
	patch.Header.Set("Content-Type", "application/offset+octet-stream")
	patch.Header.Set("Upload-Offset", "0")

	patchResp, err := http.DefaultClient.Do(patch)
	require.NoError(t, err)
	defer patchResp.Body.Close()
	require.Equal(t, http.StatusNoContent, patchResp.StatusCode)
	assert.Equal(t, "true", patchResp.Header.Get("Tus-Complete"))

	get, err := http.Get(srv.URL + "/object/videos/clip.mp4")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
}

func TestTUSOversizedChunkLeavesOffsetIntact(t *testing.T) {
	srv := newTestServer(t)
	createBucket(t, srv, "videos")

	enc := base64.StdEncoding
	metadata := "bucketName " + enc.EncodeToString([]byte("videos")) +
		",objectName " + enc.EncodeToString([]byte("clip.mp4"))

	req, err := http.NewRequest("POST", srv.URL+"/upload/resumable", nil)
	require.NoError(t, err)
	req.Header.Set("Tus-Resumable", "1.0.0")
	req.Header.Set("Upload-Length", "4")
	req.Header.Set("Upload-Metadata", metadata)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	link := resp.Header.Get("Location")

	patch := func(offset string, body []byte) *http.Response {
		req, err := http.NewRequest("PATCH", link, bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Tus-Resumable", "1.0.0")
		req.Header.Set("Content-Type", "application/offset+octet-stream")
		req.Header.Set("Upload-Offset", offset)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	// A chunk past the declared length is rejected without being kept.
	tooBig := patch("0", []byte("toolong"))
	require.Equal(t, http.StatusRequestEntityTooLarge, tooBig.StatusCode)

	head, err := http.NewRequest("HEAD", link, nil)
	require.NoError(t, err)
	headResp, err := http.DefaultClient.Do(head)
	require.NoError(t, err)
	headResp.Body.Close()
	require.Equal(t, http.StatusOK, headResp.StatusCode)
	assert.Equal(t, "0", headResp.Header.Get("Upload-Offset"))

	// The upload can still finish with a correctly sized chunk.
	done := patch("0", []byte("data"))
	require.Equal(t, http.StatusNoContent, done.StatusCode)
	assert.Equal(t, "true", done.Header.Get("Tus-Complete"))
}

func TestTUSCreateUnknownBucket(t *testing.T) {
	srv := newTestServer(t)

	enc := base64.StdEncoding
	metadata := "bucketName " + enc.EncodeToString([]byte("ghost")) +
		",objectName " + enc.EncodeToString([]byte("x"))

	req, err := http.NewRequest("POST", srv.URL+"/upload/resumable", nil)
	require.NoError(t, err)
	req.Header.Set("Tus-Resumable", "1.0.0")
	req.Header.Set("Upload-Length", "1")
	req.Header.Set("Upload-Metadata", metadata)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEmptyBucket(t *testing.T) {
	srv := newTestServer(t)
	createBucket(t, srv, "todo")

	resp, err := http.Post(srv.URL+"/object/todo/a.txt", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/bucket/todo/empty", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	head, err := http.NewRequest("HEAD", srv.URL+"/object/todo/a.txt", nil)
	require.NoError(t, err)
	headResp, err := http.DefaultClient.Do(head)
	require.NoError(t, err)
	headResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, headResp.StatusCode)
}
