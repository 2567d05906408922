package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage keeps proof screenshots on the local filesystem and hands out
// upload URLs served by this process.
type LocalStorage struct {
	baseURL   string // server URL, e.g. "http://localhost:8080"
	proofsDir string
}

func NewLocalStorage(baseURL, uploadsDir string) (*LocalStorage, error) {
	proofsDir := filepath.Join(uploadsDir, "proofs")
	if err := os.MkdirAll(proofsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create proofs directory: %w", err)
	}
	return &LocalStorage{
		baseURL:   strings.TrimRight(baseURL, "/"),
		proofsDir: proofsDir,
	}, nil
}

// GeneratePresignedUploadURL points at this server's upload handler; the key
// travels in the query string so the handler knows where to save.
func (s *LocalStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	token := uuid.NewString()
	return fmt.Sprintf("%s/api/v1/proofs/upload/%s?key=%s", s.baseURL, token, url.QueryEscape(key)), nil
}

func (s *LocalStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/api/v1/proofs/file?key=%s", s.baseURL, url.QueryEscape(key))
}

func (s *LocalStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorage) SaveFile(key string, reader io.Reader) error {
	fullPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *LocalStorage) ReadFile(key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

// path confines keys to the proofs directory.
func (s *LocalStorage) path(key string) string {
	return filepath.Join(s.proofsDir, filepath.Clean("/"+key))
}
