package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"bora-alugar-backend/internal/logger"
)

// LocalStore keeps objects on the local filesystem and serves them through
// the API's /storage routes. It stands in for S3 in development and tests.
type LocalStore struct {
	baseURL string
	rootDir string
}

func NewLocalStore(baseURL, rootDir string) (*LocalStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{baseURL: baseURL, rootDir: rootDir}, nil
}

// PresignUpload returns a URL on this server that accepts a PUT of the object.
// Local URLs do not expire.
func (s *LocalStore) PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/storage/upload?key=%s", s.baseURL, url.QueryEscape(key)), nil
}

func (s *LocalStore) PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/storage/download?key=%s", s.baseURL, url.QueryEscape(key)), nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Object not found", "key", key)
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) Save(key string, r io.Reader) error {
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Object stored", "key", key)
	return nil
}

func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) path(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(key)), nil
}
