package storage

import (
	"context"
	"errors"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

// GCS stores objects in a Google Cloud Storage bucket. Objects are served
// through the bucket's public URL; the bucket is expected to allow public
// reads (the same model the hosted storage used).
type GCS struct {
	client *gcs.Client
	bucket string
}

// NewGCS opens a client against the named bucket using ambient credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: connect GCS: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Save(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	w := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("storage: write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize object %s: %w", objectPath, err)
	}
	return objectPath, nil
}

func (g *GCS) Remove(ctx context.Context, objectPath string) error {
	err := g.client.Bucket(g.bucket).Object(objectPath).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrNotFound
	}
	return err
}

func (g *GCS) PublicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectPath)
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
