package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps evidence files on the local filesystem. It serves
// deployments where the evidence volume is mounted on the application host;
// the returned URLs are resolved by the HTTP layer's file handler.
type LocalStore struct {
	baseURL string
	dir     string
}

func NewLocalStore(baseURL, dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}
	return &LocalStore{baseURL: strings.TrimRight(baseURL, "/"), dir: dir}, nil
}

func (s *LocalStore) path(key string) string {
	// keys are uuid-based, but never trust them as paths
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *LocalStore) Upload(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Create(s.path(key))
	if err != nil {
		return "", fmt.Errorf("failed to create evidence file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(s.path(key))
		return "", fmt.Errorf("failed to write evidence file: %w", err)
	}
	return fmt.Sprintf("%s/evidence/%s", s.baseURL, filepath.Base(key)), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete evidence file: %w", err)
	}
	return nil
}

// KeyFromURL recovers the storage key from a URL previously returned by
// Upload
func KeyFromURL(url string) string {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return url
	}
	return url[idx+1:]
}
