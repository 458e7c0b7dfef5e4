package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	designapp "github.com/apparel/storefront/internal/application/design"
)

// StubObjectStorage stands in for object storage in development when no
// bucket is configured. URLs point at BaseURL and nothing is stored.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "https://storage.example.com"
	}
	return &StubObjectStorage{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Ensure StubObjectStorage implements ObjectStorageService
var _ designapp.ObjectStorageService = (*StubObjectStorage)(nil)

// GenerateUploadURL generates a stub upload URL
func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// PublicURL returns the stub download location
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	return s.BaseURL + "/" + strings.TrimLeft(storageKey, "/")
}
