// Package attachments is the storage boundary for message attachments. The
// message service validates MIME type and size before anything reaches a Store.
package attachments

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store accepts a binary upload plus a logical folder and returns the stored
// file's public URL.
type Store interface {
	Save(ctx context.Context, folder, filename string, content io.Reader) (string, error)
}

// FileStore writes attachments under a base directory and serves them from a
// base URL prefix.
type FileStore struct {
	baseDir string
	baseURL string
}

// NewFileStore constructs a FileStore.
func NewFileStore(baseDir, baseURL string) *FileStore {
	return &FileStore{baseDir: baseDir, baseURL: baseURL}
}

// Save stores the content under a random name, keeping the original extension.
func (s *FileStore) Save(ctx context.Context, folder, filename string, content io.Reader) (string, error) {
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}

	stored := uuid.NewString() + filepath.Ext(filename)
	f, err := os.Create(filepath.Join(dir, stored))
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, folder, stored), nil
}
