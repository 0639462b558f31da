package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStore keeps uploads under a local directory that the API also serves
// at baseURL (/static in development).
type FileStore struct {
	root    string
	baseURL string
}

// NewFileStore creates root if needed.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: root directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FileStore{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the absolute upload directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) Upload(ctx context.Context, blob Blob, preset string) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, uploadFailed("filesystem upload", err)
	}
	key, err := objectKey(preset, blob)
	if err != nil {
		return nil, uploadFailed("filesystem upload", err)
	}
	if err := s.write(key, blob.Data); err != nil {
		return nil, uploadFailed("filesystem upload", err)
	}
	return &UploadResult{
		SecureURL: s.url(key),
		Key:       key,
		Bytes:     int64(len(blob.Data)),
		Checksum:  checksum(blob.Data),
	}, nil
}

func (s *FileStore) url(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// write places data at key through a temporary file in the same directory
// so readers never observe a partial image.
func (s *FileStore) write(key string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(key))
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// sanitizeKey turns key into a slash separated relative path that stays
// inside the store root.
func sanitizeKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	if key == "" {
		return "", errors.New("storage: empty key")
	}
	cleaned := strings.TrimLeft(path.Clean("/"+key), "/")
	if cleaned == "" || strings.Contains(key, "../") || strings.HasSuffix(key, "/..") || key == ".." {
		return "", fmt.Errorf("storage: key %q escapes the store", key)
	}
	return cleaned, nil
}
