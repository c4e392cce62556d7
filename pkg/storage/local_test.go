package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalSaveRemove(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "http://localhost:8080")
	ctx := context.Background()

	stored, err := store.Save(ctx, "fotos/abc/1.jpg", []byte("payload"), "image/jpeg")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if stored != "fotos/abc/1.jpg" {
		t.Errorf("Save() returned %q, expected the object path back", stored)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fotos", "abc", "1.jpg"))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("stored payload = %q", data)
	}

	if got := store.PublicURL(stored); got != "http://localhost:8080/uploads/fotos/abc/1.jpg" {
		t.Errorf("PublicURL() = %q", got)
	}

	if err := store.Remove(ctx, stored); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := store.Remove(ctx, stored); err != ErrNotFound {
		t.Errorf("Remove() on missing object = %v, expected ErrNotFound", err)
	}
}
