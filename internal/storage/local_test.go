package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore("http://localhost:8080/", dir)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Upload(ctx, "abc-123", "image/jpeg", strings.NewReader("photo bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/evidence/abc-123", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc-123"))
	require.NoError(t, err)
	assert.Equal(t, "photo bytes", string(data))

	require.NoError(t, store.Delete(ctx, "abc-123"))
	_, err = os.Stat(filepath.Join(dir, "abc-123"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStore("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "never-uploaded"))
}

func TestLocalStoreSanitizesKeyPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore("http://localhost:8080", dir)
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "../escape", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/evidence/escape", url)
	_, err = os.Stat(filepath.Join(dir, "escape"))
	assert.NoError(t, err)
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "abc-123", KeyFromURL("http://localhost:8080/evidence/abc-123"))
	assert.Equal(t, "abc-123", KeyFromURL("abc-123"))
}
