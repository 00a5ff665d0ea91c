package storage

import (
	"context"

	"github.com/rentora/posts-service/internal/entity"
)

// ImageStorage is the external image store. Upload returns a reference
// whose ID is the provider's canonical object identifier, so deletion
// never has to derive anything from the URL.
type ImageStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (entity.ImageRef, error)
	Delete(ctx context.Context, imageID string) error
}
