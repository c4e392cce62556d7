package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects under a directory on disk and serves them through
// the /uploads/ static route.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a disk-backed store rooted at dir. baseURL may be empty;
// URLs are then relative ("/uploads/...").
func NewLocal(dir, baseURL string) *Local {
	return &Local{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (l *Local) Save(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(objectPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return objectPath, nil
}

func (l *Local) Remove(ctx context.Context, objectPath string) error {
	full := filepath.Join(l.root, filepath.FromSlash(objectPath))
	err := os.Remove(full)
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (l *Local) PublicURL(objectPath string) string {
	return l.baseURL + "/uploads/" + objectPath
}
