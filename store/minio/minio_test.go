package minio

import (
	"context"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"

	"github.com/AlexWan0/go-wavelet/store"
)

// TestStoreIntegration needs a reachable MinIO server; it is skipped otherwise.
func TestStoreIntegration(t *testing.T) {
	endpoint := os.Getenv("WAVELET_MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("minio client: %v", err)
	}
	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("minio not available: %v", err)
	}
	const bucket = "test-wavelet"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	s := NewStore(client, bucket, "images/")
	require.NoError(t, s.Put(ctx, "a.wt", []byte("payload")))
	got, err := s.Get(ctx, "a.wt")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Contains(t, names, "a.wt")

	require.NoError(t, s.Delete(ctx, "a.wt"))
	_, err = s.Get(ctx, "a.wt")
	require.ErrorIs(t, err, store.ErrNotFound)
}
