package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBackend stores objects in a Google Cloud Storage bucket that allows
// public reads.
type GCSBackend struct {
	client *storage.Client
	bucket string
}

// NewGCSBackend creates a client for bucket. If credsPath is empty,
// application default credentials are used.
func NewGCSBackend(ctx context.Context, bucket, credsPath string) (*GCSBackend, error) {
	var (
		client *storage.Client
		err    error
	)
	if credsPath == "" {
		client, err = storage.NewClient(ctx)
	} else {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
	}
	if err != nil {
		return nil, err
	}
	return &GCSBackend{client: client, bucket: bucket}, nil
}

func (b *GCSBackend) Name() string { return "gcs" }

func (b *GCSBackend) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	wc := b.client.Bucket(b.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=31536000, immutable"
	wc.ChunkSize = 0 // single request for small objects
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return publicURL(b.bucket, name), nil
}

func (b *GCSBackend) Remove(ctx context.Context, name string) error {
	err := b.client.Bucket(b.bucket).Object(name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (b *GCSBackend) ObjectName(url string) (string, bool) {
	name, ok := strings.CutPrefix(url, publicURL(b.bucket, ""))
	if !ok || !validObjectName(name) {
		return "", false
	}
	return name, true
}

func (b *GCSBackend) Close() error {
	return b.client.Close()
}

func publicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
