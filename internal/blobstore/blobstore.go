package blobstore

import (
	"context"
	"errors"
)

var ErrForeignURL = errors.New("url does not belong to this store")

// Store is the media bucket behind the CDN. Only put and delete are needed.
type Store interface {
	Put(ctx context.Context, data []byte, contentType string, path string) (string, error)
	Delete(ctx context.Context, url string) error
}
