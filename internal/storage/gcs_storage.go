package storage

import (
	"context"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"rentwear-backend/internal/logger"
)

// GCSStorage stores objects in a Google Cloud Storage bucket and hands out
// Firebase download-token URLs, so objects are readable without signed URLs.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

func NewGCSStorage(ctx context.Context, bucket, credentialsFile string) (*GCSStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (g *GCSStorage) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	logger.ExternalServiceCall("gcs", "Upload", "bucket", g.bucket, "key", key, "size", len(data))

	token := uuid.NewString()
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		logger.ExternalServiceResult("gcs", "Upload", err, "key", key)
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		logger.ExternalServiceResult("gcs", "Upload", err, "key", key)
		return "", fmt.Errorf("failed to finalize object %s: %w", key, err)
	}
	logger.ExternalServiceResult("gcs", "Upload", nil, "key", key)

	return downloadTokenURL(g.bucket, key, token), nil
}

func (g *GCSStorage) Close() error {
	return g.client.Close()
}

func downloadTokenURL(bucket, key, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), token)
}
