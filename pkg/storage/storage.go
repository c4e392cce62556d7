// Package storage abstracts the blob store holding photos and signatures.
// Production runs against a Google Cloud Storage bucket; development falls
// back to the local filesystem, mirrored by how uploads were handled before
// the GCS bucket existed.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is the blob storage collaborator. Paths are forward-slash keys
// relative to the bucket/upload root.
type Store interface {
	// Save writes the payload and returns the stored path.
	Save(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	// Remove deletes the object. Removing a missing object returns ErrNotFound.
	Remove(ctx context.Context, objectPath string) error
	// PublicURL derives the externally reachable URL for a stored path.
	PublicURL(objectPath string) string
}

// FotoPath builds the storage key for a boletim photo:
// fotos/<boletimID>/<timestamp>.<ext>. The timestamp keeps names unique
// within a boletim without a coordination step.
func FotoPath(boletimID, filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("fotos/%s/%d%s", boletimID, time.Now().UnixNano(), ext)
}

// AssinaturaPath builds the storage key for a signature image.
// kind is "requerente" or "responsavel".
func AssinaturaPath(kind, ownerID string) string {
	return fmt.Sprintf("assinaturas/%s/%s-%d.png", kind, ownerID, time.Now().UnixNano())
}

// FromEnv picks the store implementation the way the upload handler always
// has: GCS when configured or when running on Cloud Run, local disk
// otherwise.
func FromEnv(ctx context.Context) (Store, error) {
	useGCS := os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""

	if useGCS {
		bucket := os.Getenv("GCS_BUCKET")
		if bucket == "" {
			return nil, errors.New("storage: GCS_BUCKET not set")
		}
		return NewGCS(ctx, bucket)
	}
	return NewLocal("./uploads", os.Getenv("PUBLIC_BASE_URL")), nil
}
