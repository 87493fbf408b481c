package blobstore

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutListDelete(t *testing.T) {
	store := NewMemoryStore("docs")
	ctx := context.Background()

	obj, err := store.Put(ctx, "u1/a.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "u1/a.pdf", obj.Path)
	assert.Equal(t, "memory://docs/u1/a.pdf", obj.URL)

	_, err = store.Put(ctx, "u2/b.pdf", []byte("%PDF-1.5"), "application/pdf")
	require.NoError(t, err)

	objs, err := store.List(ctx, "u1/")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, int64(8), objs[0].Size)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, "u1/a.pdf"))
	assert.ErrorIs(t, store.Delete(ctx, "u1/a.pdf"), ErrNotFound)
	_, ok := store.Get("u1/a.pdf")
	assert.False(t, ok)
}

func TestMemoryStore_SignedURL(t *testing.T) {
	store := NewMemoryStore("docs")
	store.Now = func() time.Time { return time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := store.SignedURL(ctx, "missing.pdf", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Put(ctx, "u1/a.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	url, err := store.SignedURL(ctx, "u1/a.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "memory://docs/u1/a.pdf?expires=2026-01-01T11%3A00%3A00Z", url)
}

func TestMemoryStore_PutCopiesData(t *testing.T) {
	store := NewMemoryStore("docs")
	data := []byte("%PDF")
	_, err := store.Put(context.Background(), "k", data, "application/pdf")
	require.NoError(t, err)

	data[0] = 'X'
	got, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF"), got)
}

func TestServedMemoryStore_SignedURLRoundTrip(t *testing.T) {
	store := NewServedMemoryStore("http://localhost:8080/", []byte("signing-key"))
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.Put(ctx, "u1/a.pdf", []byte("%PDF"), "application/pdf")
	require.NoError(t, err)

	raw, err := store.SignedURL(ctx, "u1/a.pdf", time.Hour)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/files/u1/a.pdf", u.Path)

	expires, sig := u.Query().Get("expires"), u.Query().Get("signature")
	assert.NoError(t, store.VerifySignature("u1/a.pdf", expires, sig))
	assert.ErrorIs(t, store.VerifySignature("u2/other.pdf", expires, sig), ErrBadSignature)
	assert.ErrorIs(t, store.VerifySignature("u1/a.pdf", "9999999999", sig), ErrBadSignature)
	assert.ErrorIs(t, store.VerifySignature("u1/a.pdf", expires, "zz"), ErrBadSignature)

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, store.VerifySignature("u1/a.pdf", expires, sig), ErrBadSignature)

	data, contentType, ok := store.Read("u1/a.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF", string(data))
	assert.Equal(t, "application/pdf", contentType)
}

func TestMemoryStore_UnservedRejectsSignatures(t *testing.T) {
	store := NewMemoryStore("docs")
	assert.ErrorIs(t, store.VerifySignature("u1/a.pdf", "9999999999", "00"), ErrBadSignature)
}
