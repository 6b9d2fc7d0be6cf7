package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	billingapp "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
)

// StubReceiptStorage keeps receipts in memory and hands out fake URLs.
// Used when storage is disabled and in tests.
type StubReceiptStorage struct {
	// BaseURL prefixes generated URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]billing.ReceiptImage
}

// NewStubReceiptStorage creates an empty stub storage
func NewStubReceiptStorage() *StubReceiptStorage {
	return &StubReceiptStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string]billing.ReceiptImage),
	}
}

var _ billingapp.ReceiptStorage = (*StubReceiptStorage)(nil)

// GenerateUploadURL returns a fake upload URL
func (s *StubReceiptStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + key + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// GenerateDownloadURL returns a fake download URL
func (s *StubReceiptStorage) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + key + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// Put stores a receipt in memory
func (s *StubReceiptStorage) Put(key, contentType string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = billing.ReceiptImage{ContentType: contentType, Data: data}
}

// Fetch returns a stored receipt
func (s *StubReceiptStorage) Fetch(_ context.Context, key string) (*billing.ReceiptImage, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("receipt %q not found", key)
	}
	return &img, nil
}

// IsObjectKey reports whether ref is a receipt key
func (s *StubReceiptStorage) IsObjectKey(ref string) bool {
	return IsReceiptKey(ref)
}

// NewKey returns a fresh receipt key
func (s *StubReceiptStorage) NewKey(userID uuid.UUID, filename string) string {
	return NewReceiptKey(userID, filename)
}

// OwnsKey reports whether key was issued to userID
func (s *StubReceiptStorage) OwnsKey(userID uuid.UUID, key string) bool {
	return IsReceiptKeyOf(userID, key)
}
