package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/storage"
)

// StorageHandler serves the presigned URLs handed out by storage.LocalStore.
// Keys are random UUIDs, so possession of the URL is the authorization.
type StorageHandler struct {
	files        storage.FileServer
	allowedTypes []string
	maxBytes     int64
}

func NewStorageHandler(files storage.FileServer, allowedTypes []string, maxFileSizeMB int64) *StorageHandler {
	return &StorageHandler{files: files, allowedTypes: allowedTypes, maxBytes: maxFileSizeMB * 1024 * 1024}
}

// Upload accepts the PUT a client makes against a presigned upload URL
func (h *StorageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, r, &service.ValidationError{Fields: map[string]string{"key": "is required"}})
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !storage.Allowed(h.allowedTypes, contentType) || storage.ContentTypeFor(key) != contentType {
		writeError(w, r, fmt.Errorf("%w: %q", storage.ErrUnsupportedType, contentType))
		return
	}

	body := io.Reader(r.Body)
	if h.maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := h.files.Save(key, body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large", Code: "too_large"})
			return
		}
		writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", fmt.Sprintf("%q", key))
	w.WriteHeader(http.StatusOK)
}

// Download streams a stored object back to the client
func (h *StorageHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, r, &service.ValidationError{Fields: map[string]string{"key": "is required"}})
		return
	}

	file, err := h.files.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "file not found", Code: "not_found"})
			return
		}
		writeError(w, r, err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(key))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Failed to stream file", "key", key, "error", err)
	}
}
