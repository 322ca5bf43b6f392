package storage

import "context"

// ObjectStorage stores binary objects under a key and returns a URL that serves them.
// Implementations: MockStorageService (local filesystem) and GCSStorage (Google Cloud Storage).
type ObjectStorage interface {
	// Upload writes data under key and returns a publicly readable URL
	// key: storage path/key for the object, e.g. "returns/RET-1A2B3C4D/<uuid>.jpg"
	// contentType: MIME type (e.g., "image/jpeg")
	Upload(ctx context.Context, key string, contentType string, data []byte) (string, error)
}
