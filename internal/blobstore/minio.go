package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
	// PublicURL is the CDN origin the bucket is served from.
	PublicURL string
}

type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinioStore(ctx context.Context, cfg *MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, err
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s/%s/", strings.TrimRight(publicURL, "/"), cfg.Bucket),
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, data []byte, contentType string, path string) (string, error) {
	objectName := strings.TrimLeft(path, "/")
	if objectName == "" || strings.Contains(objectName, "..") {
		return "", fmt.Errorf("invalid object name %q", path)
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	return s.baseURL + objectName, nil
}

func (s *MinioStore) Delete(ctx context.Context, url string) error {
	objectName, err := ObjectName(s.baseURL, url)
	if err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// ObjectName maps a public url back to its object name under baseURL.
func ObjectName(baseURL string, url string) (string, error) {
	if !strings.HasPrefix(url, baseURL) {
		return "", ErrForeignURL
	}
	objectName := strings.TrimPrefix(url, baseURL)
	if i := strings.IndexAny(objectName, "?#"); i >= 0 {
		objectName = objectName[:i]
	}
	if objectName == "" {
		return "", ErrForeignURL
	}
	return objectName, nil
}
