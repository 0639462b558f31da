// Package storage uploads rendered designs and profile images to a blob store
// and hands back the public URL.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
)

// Blob is one file to upload.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
	// Folder groups uploads, e.g. "designs/<user id>".
	Folder string
}

// UploadResult describes the stored blob.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	Key       string `json:"key"`
	Bytes     int64  `json:"bytes"`
	Checksum  string `json:"checksum"`
}

// BlobStore uploads blobs. preset names the upload preset (Cloudinary) or the
// key prefix (filesystem, S3). Failures wrap domain.ErrUploadFailed.
type BlobStore interface {
	Upload(ctx context.Context, blob Blob, preset string) (*UploadResult, error)
}

// objectKey builds "<preset>/<folder>/<uuid>_<name>" with empty parts dropped.
func objectKey(preset string, blob Blob) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(blob.Name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "blob"
	}
	var parts []string
	for _, p := range []string{preset, blob.Folder} {
		if p = strings.Trim(strings.TrimSpace(p), "/"); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, uuid.NewString()+"_"+name)
	return sanitizeKey(path.Join(parts...))
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func uploadFailed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUploadFailed, err)
}

// Instrumented counts uploads per provider in infra.BlobUploads.
type Instrumented struct {
	Store    BlobStore
	Provider string
}

func (i Instrumented) Upload(ctx context.Context, blob Blob, preset string) (*UploadResult, error) {
	res, err := i.Store.Upload(ctx, blob, preset)
	infra.BlobUploads.WithLabelValues(i.Provider, infra.Outcome(err)).Inc()
	return res, err
}
