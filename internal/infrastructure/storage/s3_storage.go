// Package storage provides receipt storage on S3-compatible object stores.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	billingapp "github.com/rentflow/backend/internal/application/billing"
	"github.com/rentflow/backend/internal/domain/billing"
	infraconfig "github.com/rentflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReceiptKeyPrefix starts every receipt object key
const ReceiptKeyPrefix = "receipts/"

// Storage errors
var (
	ErrKeyRequired     = errors.New("storage key is required")
	ErrReceiptTooLarge = errors.New("receipt exceeds the maximum size")
)

var _ billingapp.ReceiptStorage = (*S3ReceiptStorage)(nil)

// S3ReceiptStorage implements ReceiptStorage using AWS S3 SDK v2.
// Any S3-compatible store works (AWS S3, MinIO, RustFS).
type S3ReceiptStorage struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	maxReceiptSize    int64
	logger            *zap.Logger
}

// S3ReceiptStorageOption is a functional option for configuring S3ReceiptStorage
type S3ReceiptStorageOption func(*S3ReceiptStorage)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ReceiptStorageOption {
	return func(s *S3ReceiptStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3ReceiptStorageOption {
	return func(s *S3ReceiptStorage) {
		s.presignExpiration = d
	}
}

// NewS3ReceiptStorage creates receipt storage from configuration
func NewS3ReceiptStorage(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ReceiptStorageOption) (*S3ReceiptStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	storage := &S3ReceiptStorage{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.PresignExpiration,
		maxReceiptSize:    cfg.MaxReceiptSize,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}

	if storage.presignExpiration == 0 {
		storage.presignExpiration = 15 * time.Minute
	}
	if storage.maxReceiptSize == 0 {
		storage.maxReceiptSize = 10 << 20
	}

	return storage, nil
}

// normalizeEndpoint adds a scheme to a bare host. Empty means the AWS default endpoint.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3ReceiptStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating receipt bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// GenerateUploadURL generates a presigned PUT URL
func (s *S3ReceiptStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	req, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate upload URL: %w", err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL generates a presigned GET URL
func (s *S3ReceiptStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// Fetch downloads a receipt object
func (s *S3ReceiptStorage) Fetch(ctx context.Context, key string) (*billing.ReceiptImage, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipt: %w", err)
	}
	defer out.Body.Close()

	if out.ContentLength != nil && *out.ContentLength > s.maxReceiptSize {
		return nil, ErrReceiptTooLarge
	}
	return readReceipt(out.Body, aws.ToString(out.ContentType), s.maxReceiptSize)
}

// IsObjectKey reports whether ref is a receipt key rather than an external URL
func (s *S3ReceiptStorage) IsObjectKey(ref string) bool {
	return IsReceiptKey(ref)
}

// NewKey returns a fresh receipt key for the uploader
func (s *S3ReceiptStorage) NewKey(userID uuid.UUID, filename string) string {
	return NewReceiptKey(userID, filename)
}

// OwnsKey reports whether key lives under the uploader's prefix
func (s *S3ReceiptStorage) OwnsKey(userID uuid.UUID, key string) bool {
	return IsReceiptKeyOf(userID, key)
}

// Upload stores data directly. Clients upload through presigned URLs instead.
func (s *S3ReceiptStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrKeyRequired
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3ReceiptStorage) Bucket() string {
	return s.bucket
}

// NewReceiptKey returns a fresh object key under the uploader's prefix,
// keeping the file extension of the original name
func NewReceiptKey(userID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) > 8 {
		ext = ""
	}
	return ReceiptKeyPrefix + userID.String() + "/" + uuid.New().String() + ext
}

// IsReceiptKey reports whether ref was produced by NewReceiptKey
func IsReceiptKey(ref string) bool {
	return strings.HasPrefix(ref, ReceiptKeyPrefix) && !strings.Contains(ref, "..")
}

// IsReceiptKeyOf reports whether ref is a receipt key issued to userID
func IsReceiptKeyOf(userID uuid.UUID, ref string) bool {
	return IsReceiptKey(ref) && strings.HasPrefix(ref, ReceiptKeyPrefix+userID.String()+"/")
}

func readReceipt(r io.Reader, contentType string, limit int64) (*billing.ReceiptImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrReceiptTooLarge
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &billing.ReceiptImage{ContentType: contentType, Data: data}, nil
}
