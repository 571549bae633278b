// Package storage wraps the S3-compatible blob store holding supporting
// documents for drafts and submitted applications.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename replaces anything outside [A-Za-z0-9._-] with underscores
// so uploads produce predictable object keys.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// ObjectKey derives the deterministic storage path for a supporting document.
func ObjectKey(userID, opportunityID uint, filename string, now time.Time) string {
	return fmt.Sprintf("applications/%d/%d/%d-%s", userID, opportunityID, now.UnixMilli(), SanitizeFilename(filename))
}

type BlobStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewBlobStoreFromEnv builds the store from S3_REGION, S3_BUCKET,
// S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_PUBLIC_URL. The endpoint
// override keeps MinIO-style deployments working.
func NewBlobStoreFromEnv(ctx context.Context) (*BlobStore, error) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is not set")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(os.Getenv("S3_REGION")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("S3_ACCESS_KEY"),
			os.Getenv("S3_SECRET_KEY"),
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimSuffix(os.Getenv("S3_PUBLIC_URL"), "/")
	if publicURL == "" {
		publicURL = strings.TrimSuffix(os.Getenv("S3_ENDPOINT"), "/")
	}

	return &BlobStore{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}, nil
}

// URLFor returns the stable download URL for a stored object.
func (b *BlobStore) URLFor(key string) string {
	return fmt.Sprintf("%s/%s/%s", b.publicURL, b.bucket, key)
}

// Upload stores one object and returns its download URL.
func (b *BlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	if err != nil {
		return "", err
	}

	return b.URLFor(key), nil
}

// Delete removes one object. Callers treat failures as best-effort cleanup.
func (b *BlobStore) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}
