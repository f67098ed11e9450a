package s3store

import (
	"context"
	"os"
	"testing"
)

// TestStore_PutGetDelete exercises Store against a real S3-compatible
// endpoint (e.g. a local MinIO). It only runs when S3STORE_TEST_ENDPOINT is
// set, since there is no way to "ping" an S3 client without issuing a real
// request.
func TestStore_PutGetDelete(t *testing.T) {
	endpoint := os.Getenv("S3STORE_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3STORE_TEST_ENDPOINT not set")
	}

	store, err := Connect(Config{
		HostEndpointURL: endpoint,
		Region:          "us-east-1",
		Username:        os.Getenv("S3STORE_TEST_USERNAME"),
		Password:        os.Getenv("S3STORE_TEST_PASSWORD"),
		Bucket:          os.Getenv("S3STORE_TEST_BUCKET"),
		DataShards:      2,
		ParityShards:    1,
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	ctx := context.Background()
	payload := []byte("hello erasure-coded world")

	if err := store.Put(ctx, "test/widget", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}
	defer store.Delete(ctx, "test/widget")

	got, err := store.Get(ctx, "test/widget")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}
