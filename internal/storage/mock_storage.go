package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"rentwear-backend/internal/logger"
)

// MockStorageService implements object storage using the local filesystem.
// Objects are served back by the mock download route of the HTTP server.
type MockStorageService struct {
	baseURL    string // Server URL (e.g., "http://localhost:8080")
	objectsDir string // Local directory holding the objects
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService(baseURL, uploadsDir string) (*MockStorageService, error) {
	objectsDir := filepath.Join(uploadsDir, "objects")

	// Create directories if they don't exist
	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}

	return &MockStorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		objectsDir: objectsDir,
	}, nil
}

// Upload saves the object and returns its mock download URL
func (m *MockStorageService) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	logger.ExternalServiceCall("mock-storage", "Upload", "key", key, "contentType", contentType, "size", len(data))
	err := m.SaveFile(key, bytes.NewReader(data))
	logger.ExternalServiceResult("mock-storage", "Upload", err, "key", key)
	if err != nil {
		return "", err
	}
	return m.DownloadURL(key), nil
}

// DownloadURL builds the URL served by the mock download route
func (m *MockStorageService) DownloadURL(key string) string {
	return fmt.Sprintf("%s/api/v1/download/%s?key=%s", m.baseURL, encodeKey(key), url.QueryEscape(key))
}

// SaveFile saves an object to the local filesystem
func (m *MockStorageService) SaveFile(key string, reader io.Reader) error {
	fullPath, err := m.localPath(key)
	if err != nil {
		return err
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReadFile opens an object for reading
func (m *MockStorageService) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.localPath(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// localPath maps a key to a path inside objectsDir, rejecting keys that escape it
func (m *MockStorageService) localPath(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(m.objectsDir, clean), nil
}

// encodeKey creates a URL-safe hash of the key
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes
}
