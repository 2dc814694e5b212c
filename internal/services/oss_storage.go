package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"promptvault-backend/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// ObjectStore keeps attachment bytes.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// OSSStore stores objects in an Aliyun OSS bucket.
type OSSStore struct {
	bucket   *oss.Bucket
	endpoint string
	name     string
}

func NewOSSStore(cfg *config.Config) (*OSSStore, error) {
	client, err := oss.New(
		cfg.OSSEndpoint,
		cfg.OSSAccessKeyID,
		cfg.OSSAccessKeySecret,
		oss.Timeout(60, 120), // Connect timeout 60s, Read/Write timeout 120s
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.OSSBucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSStore{bucket: bucket, endpoint: cfg.OSSEndpoint, name: cfg.OSSBucketName}, nil
}

func (s *OSSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	opts := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return "", err
	}
	return publicURL(s.endpoint, s.name, key), nil
}

func (s *OSSStore) Delete(ctx context.Context, key string) error {
	return s.bucket.DeleteObject(key, oss.WithContext(ctx))
}

// publicURL builds the virtual-hosted style URL of an object.
func publicURL(endpoint, bucket, key string) string {
	scheme := "https"
	if before, after, ok := strings.Cut(endpoint, "://"); ok {
		scheme, endpoint = before, after
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme, bucket, strings.TrimSuffix(endpoint, "/"), key)
}
