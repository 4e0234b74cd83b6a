package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "upload-tests", nil))

	bucket, err := client.GetBucket(ctx, "upload-tests")
	require.NoError(t, err)
	assert.Equal(t, "upload-tests", bucket.ID)
	assert.False(t, bucket.Public)

	buckets, err := client.ListBuckets(ctx)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "upload-tests", buckets[0].ID)

	require.NoError(t, client.UpdateBucket(ctx, "upload-tests", BucketOptions{Public: true}))
	bucket, err = client.GetBucket(ctx, "upload-tests")
	require.NoError(t, err)
	assert.True(t, bucket.Public)

	require.NoError(t, client.DeleteBucket(ctx, "upload-tests"))

	_, err = client.GetBucket(ctx, "upload-tests")
	assert.True(t, IsNotFound(err))
}

func TestCreateBucketDuplicate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "dup", nil))

	err := client.CreateBucket(ctx, "dup", nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Duplicate", apiErr.Code)
}

func TestGetBucketMissing(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetBucket(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestDeleteBucketRejectsNonEmpty(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.CreateBucket(ctx, "full", nil))
	require.NoError(t, client.From("full").Upload(ctx, "a.txt", bytes.NewReader([]byte("x")), nil))

	err := client.DeleteBucket(ctx, "full")
	assert.Error(t, err)

	// Emptying first makes the delete pass.
	require.NoError(t, client.EmptyBucket(ctx, "full"))
	assert.NoError(t, client.DeleteBucket(ctx, "full"))
}
