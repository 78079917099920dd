package s3_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	miniocontainer "github.com/testcontainers/testcontainers-go/modules/minio"

	"github.com/obaudys/filegate"
	"github.com/obaudys/filegate/s3"
)

var (
	testStore     *s3.Store
	testStoreOnce sync.Once
)

// getSharedTestStore returns a store backed by a shared MinIO container.
// Tests isolate themselves through distinct object keys.
func getSharedTestStore(t *testing.T) *s3.Store {
	t.Helper()

	testStoreOnce.Do(func() {
		ctx := context.Background()

		container, err := miniocontainer.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z")
		if err != nil {
			t.Fatalf("failed to start minio container: %v", err)
		}

		endpoint, err := container.ConnectionString(ctx)
		if err != nil {
			_ = testcontainers.TerminateContainer(container)
			t.Fatalf("failed to get connection string: %v", err)
		}

		cfg := s3.Config{
			Endpoint:  endpoint,
			Bucket:    "filegate-test",
			AccessKey: container.Username,
			SecretKey: container.Password,
			UseSSL:    false,
			PathStyle: true,
		}

		testStore, err = s3.New(ctx, cfg, nil)
		if err != nil {
			_ = testcontainers.TerminateContainer(container)
			t.Fatalf("failed to create store: %v", err)
		}
	})

	return testStore
}

func putTestObject(t *testing.T, store *s3.Store, key, content string, opts filegate.PutOptions) {
	t.Helper()
	err := store.Put(context.Background(), key, strings.NewReader(content), int64(len(content)), opts)
	require.NoError(t, err)
}

func TestStore_PutGetRoundtrip(t *testing.T) {
	store := getSharedTestStore(t)
	ctx := context.Background()

	content := "hello object store"
	putTestObject(t, store, "roundtrip/obj.txt", content, filegate.PutOptions{
		ContentType:  "text/plain",
		OriginalName: "Original Name.TXT",
	})

	rc, err := store.Get(ctx, "roundtrip/obj.txt")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestStore_Stat(t *testing.T) {
	store := getSharedTestStore(t)
	ctx := context.Background()

	content := "stat me"
	putTestObject(t, store, "stat/obj.bin", content, filegate.PutOptions{
		ContentType:  "application/pdf",
		OriginalName: "report.pdf",
	})

	stat, err := store.Stat(ctx, "stat/obj.bin")
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), stat.Size)
	assert.Equal(t, "application/pdf", stat.ContentType)
	assert.Equal(t, "report.pdf", stat.OriginalName)
	assert.False(t, stat.ModTime.IsZero())
}

func TestStore_Stat_NotFound(t *testing.T) {
	store := getSharedTestStore(t)

	_, err := store.Stat(context.Background(), "absent/never-put")
	assert.ErrorIs(t, err, filegate.ErrNotFound)
}

func TestStore_GetRange(t *testing.T) {
	store := getSharedTestStore(t)
	ctx := context.Background()

	putTestObject(t, store, "range/obj.txt", "0123456789", filegate.PutOptions{ContentType: "text/plain"})

	rc, err := store.GetRange(ctx, "range/obj.txt", 3, 4)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(got))
}

func TestStore_Remove(t *testing.T) {
	store := getSharedTestStore(t)
	ctx := context.Background()

	putTestObject(t, store, "remove/obj.txt", "bye", filegate.PutOptions{ContentType: "text/plain"})

	require.NoError(t, store.Remove(ctx, "remove/obj.txt"))

	_, err := store.Stat(ctx, "remove/obj.txt")
	assert.ErrorIs(t, err, filegate.ErrNotFound)

	// Removing an absent key succeeds
	assert.NoError(t, store.Remove(ctx, "remove/obj.txt"))
}

func TestStore_PresignedGet(t *testing.T) {
	store := getSharedTestStore(t)
	ctx := context.Background()

	putTestObject(t, store, "presign/obj.txt", "signed", filegate.PutOptions{ContentType: "text/plain"})

	u, err := store.PresignedGet(ctx, "presign/obj.txt", 5*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, u, "filegate-test")
	assert.Contains(t, u, "presign/obj.txt")
	assert.Contains(t, u, "X-Amz-Signature")
}
