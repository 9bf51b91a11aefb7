// Package storage writes note exports to Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewClient creates a GCS client. An empty credsPath uses Application
// Default Credentials.
func NewClient(ctx context.Context, credsPath string) (*gcs.Client, error) {
	if credsPath == "" {
		return gcs.NewClient(ctx)
	}
	return gcs.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSUploader writes export objects into a single bucket
type GCSUploader struct {
	Client  *gcs.Client
	Bucket  string
	Timeout time.Duration
}

func NewGCSUploader(client *gcs.Client, bucket string) *GCSUploader {
	return &GCSUploader{Client: client, Bucket: bucket, Timeout: 30 * time.Second}
}

// Upload streams r into the bucket and returns the object's URL. Exports are
// private snapshots, so they are served as downloads and never cached.
func (u *GCSUploader) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	c, cancel := context.WithTimeout(ctx, u.Timeout)
	defer cancel()

	w := u.Client.Bucket(u.Bucket).Object(objectPath).NewWriter(c)
	w.ContentType = contentType
	w.CacheControl = "private, no-store"
	w.ContentDisposition = fmt.Sprintf("attachment; filename=%q", path.Base(objectPath))
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return ObjectURL(u.Bucket, objectPath), nil
}

func ObjectURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
