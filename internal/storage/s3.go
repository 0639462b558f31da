package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Config selects the bucket. Endpoint is set for S3 compatible services;
// credentials come from the default AWS chain.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// S3Store uploads blobs as public-read objects.
type S3Store struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	baseURL  string
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create aws session: %w", err)
	}
	return newS3Store(s3manager.NewUploader(sess), cfg), nil
}

func newS3Store(uploader s3manageriface.UploaderAPI, cfg S3Config) *S3Store {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Store{uploader: uploader, bucket: cfg.Bucket, baseURL: base}
}

func (s *S3Store) Upload(ctx context.Context, blob Blob, preset string) (*UploadResult, error) {
	key, err := objectKey(preset, blob)
	if err != nil {
		return nil, uploadFailed("s3 upload", err)
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob.Data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return nil, uploadFailed("s3 upload", err)
	}
	return &UploadResult{
		SecureURL: s.baseURL + "/" + key,
		Key:       key,
		Bytes:     int64(len(blob.Data)),
		Checksum:  checksum(blob.Data),
	}, nil
}
