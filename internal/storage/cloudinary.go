package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// CloudinaryStore performs unsigned uploads against a Cloudinary cloud using
// an upload preset.
type CloudinaryStore struct {
	baseURL   string
	cloudName string
	client    *http.Client
}

func NewCloudinaryStore(baseURL, cloudName string, client *http.Client) *CloudinaryStore {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &CloudinaryStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		cloudName: cloudName,
		client:    client,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *CloudinaryStore) Upload(ctx context.Context, blob Blob, preset string) (*UploadResult, error) {
	if strings.TrimSpace(preset) == "" {
		return nil, uploadFailed("cloudinary upload", fmt.Errorf("upload preset is required"))
	}
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	name := blob.Name
	if name == "" {
		name = "blob"
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, uploadFailed("cloudinary upload", err)
	}
	if _, err := fw.Write(blob.Data); err != nil {
		return nil, uploadFailed("cloudinary upload", err)
	}
	_ = mw.WriteField("upload_preset", preset)
	if folder := strings.Trim(blob.Folder, "/"); folder != "" {
		_ = mw.WriteField("folder", folder)
	}
	if err := mw.Close(); err != nil {
		return nil, uploadFailed("cloudinary upload", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", s.baseURL, s.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, uploadFailed("cloudinary upload", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, uploadFailed("cloudinary upload", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, uploadFailed("cloudinary upload", err)
	}

	var out cloudinaryResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, uploadFailed("cloudinary upload", fmt.Errorf("status %d: decode response: %w", resp.StatusCode, err))
	}
	if resp.StatusCode >= 300 || out.SecureURL == "" {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, uploadFailed("cloudinary upload", fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
	size := out.Bytes
	if size == 0 {
		size = int64(len(blob.Data))
	}
	return &UploadResult{
		SecureURL: out.SecureURL,
		Key:       out.PublicID,
		Bytes:     size,
		Checksum:  checksum(blob.Data),
	}, nil
}
