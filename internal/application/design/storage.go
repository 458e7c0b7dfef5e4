package design

import (
	"context"
	"time"
)

// ObjectStorageService presigns artwork uploads. Implemented by the
// infrastructure layer (S3 or a compatible store).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// PublicURL is where the stored object is served from once uploaded
	PublicURL(storageKey string) string
}
