package objectstore_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"greenhome/internal/objectstore"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := objectstore.NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)
	ctx := context.Background()

	target, err := store.RequestUpload(ctx, "Plan.PDF", "application/pdf")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(target.ObjectPath, "/objects/uploads/"))
	require.True(t, strings.HasSuffix(target.ObjectPath, ".pdf"))
	require.Equal(t, "PUT", target.Method)
	require.Equal(t, target.ObjectPath, target.UploadURL)
	require.Equal(t, "application/pdf", target.Headers["Content-Type"])

	require.NoError(t, store.Put(ctx, target.ObjectPath, "application/pdf", strings.NewReader("%PDF-1.7")))

	rc, contentType, err := store.Open(ctx, target.ObjectPath)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(body))
	require.Equal(t, "application/pdf", contentType)
}

func TestLocalStoreRejectsBadPaths(t *testing.T) {
	store, err := objectstore.NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{
		"/objects/uploads/../secret",
		"/objects/other/x.pdf",
		"/objects/uploads/",
		"/objects/uploads/a/b.pdf",
		"/objects/uploads/x.pdf.type",
		"/objects/uploads/.hidden",
	} {
		_, _, err := store.Open(ctx, p)
		require.ErrorIs(t, err, objectstore.ErrInvalidPath, p)
	}

	_, _, err = store.Open(ctx, "/objects/uploads/missing.pdf")
	require.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestLocalStoreSizeLimit(t *testing.T) {
	store, err := objectstore.NewLocalStore(t.TempDir(), 4)
	require.NoError(t, err)
	ctx := context.Background()

	err = store.Put(ctx, "/objects/uploads/big.bin", "", strings.NewReader("12345"))
	require.ErrorIs(t, err, objectstore.ErrTooLarge)

	_, _, err = store.Open(ctx, "/objects/uploads/big.bin")
	require.ErrorIs(t, err, objectstore.ErrNotFound)
}

func TestDisabledStore(t *testing.T) {
	var store objectstore.Store = objectstore.Disabled{}
	_, err := store.RequestUpload(context.Background(), "a.pdf", "application/pdf")
	require.ErrorIs(t, err, objectstore.ErrNotConfigured)
}

func TestLocalStoreWritesOnce(t *testing.T) {
	store, err := objectstore.NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)
	ctx := context.Background()

	target, err := store.RequestUpload(ctx, "contract.pdf", "application/pdf")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, target.ObjectPath, "application/pdf", strings.NewReader("signed contract")))

	err = store.Put(ctx, target.ObjectPath, "text/html", strings.NewReader("<script>evil</script>"))
	require.ErrorIs(t, err, objectstore.ErrExists)

	rc, contentType, err := store.Open(ctx, target.ObjectPath)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "signed contract", string(body))
	require.Equal(t, "application/pdf", contentType)
}

func TestRequestUploadDropsSidecarExtension(t *testing.T) {
	store, err := objectstore.NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)
	ctx := context.Background()

	target, err := store.RequestUpload(ctx, "notes.type", "text/plain")
	require.NoError(t, err)
	require.False(t, strings.HasSuffix(target.ObjectPath, ".type"))

	require.NoError(t, store.Put(ctx, target.ObjectPath, "text/plain", strings.NewReader("notes")))
	rc, _, err := store.Open(ctx, target.ObjectPath)
	require.NoError(t, err)
	rc.Close()
}
