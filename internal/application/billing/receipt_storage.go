package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
)

// ReceiptStorage holds uploaded payment receipts. A proof reference is either
// an object key issued by the storage or an external URL.
type ReceiptStorage interface {
	// GenerateUploadURL returns a presigned PUT URL for the key
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL returns a presigned GET URL for the key
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)

	// Fetch downloads a receipt, refusing objects larger than the configured limit
	Fetch(ctx context.Context, key string) (*billing.ReceiptImage, error)

	// NewKey returns a fresh object key for a receipt uploaded by userID
	NewKey(userID uuid.UUID, filename string) string

	// OwnsKey reports whether key was issued to userID
	OwnsKey(userID uuid.UUID, key string) bool

	// IsObjectKey reports whether a proof reference names an object in this storage
	IsObjectKey(ref string) bool
}
