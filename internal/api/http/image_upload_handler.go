package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/storage"
)

// ImageUploadHandler serves objects from the local store used when storage.type is
// mock. Writes go through storage.ObjectStorage only; there is no upload route.
type ImageUploadHandler struct {
	mockStorage *storage.MockStorageService
}

func NewImageUploadHandler(mockStorage *storage.MockStorageService) *ImageUploadHandler {
	return &ImageUploadHandler{mockStorage: mockStorage}
}

// HandleMockDownload streams a stored object back.
func (h *ImageUploadHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.mockStorage.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = storage.ContentTypeJPEG
	case ".png":
		contentType = storage.ContentTypePNG
	case ".webp":
		contentType = storage.ContentTypeWebP
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.FromContext(r.Context()).Warn("Mock download interrupted", "key", key, "error", err)
	}
}

// RegisterMockStorageRoutes registers the mock storage download endpoint
func RegisterMockStorageRoutes(router *mux.Router, mockStorage *storage.MockStorageService) {
	handler := NewImageUploadHandler(mockStorage)
	router.HandleFunc("/api/v1/download/{key}", handler.HandleMockDownload).Methods(http.MethodGet).Name("MockDownload")
}
