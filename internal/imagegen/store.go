package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore persists one image file under a category-prefixed key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
}

// LocalStore writes images under a root directory. It is the fallback when
// no remote bucket is configured or reachable.
type LocalStore struct {
	Root string
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return fmt.Errorf("key is required")
	}
	path := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
