// Package storage provides object storage for uploaded artwork.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	designapp "github.com/apparel/storefront/internal/application/design"
	infraconfig "github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

var _ designapp.ObjectStorageService = (*ArtworkStore)(nil)

const (
	defaultRegion        = "us-east-1"
	defaultPresignExpiry = 15 * time.Minute
)

// ArtworkStore presigns artwork uploads against S3 or any S3-compatible
// store (MinIO, R2). Objects are uploaded by the browser, never proxied.
type ArtworkStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	endpoint  string
	pathStyle bool
	cdnBase   string
	expiry    time.Duration
	logger    *zap.Logger
}

// Option configures an ArtworkStore
type Option func(*ArtworkStore)

func WithLogger(logger *zap.Logger) Option {
	return func(s *ArtworkStore) { s.logger = logger.Named("artwork-storage") }
}

// WithPresignExpiration overrides storage.presign_expiration
func WithPresignExpiration(d time.Duration) Option {
	return func(s *ArtworkStore) {
		if d > 0 {
			s.expiry = d
		}
	}
}

func checkStorageConfig(cfg *infraconfig.StorageConfig) error {
	switch {
	case cfg == nil:
		return errors.New("storage configuration is required")
	case cfg.Bucket == "":
		return errors.New("storage bucket is required")
	case cfg.AccessKey == "":
		return errors.New("storage access key is required")
	case cfg.SecretKey == "":
		return errors.New("storage secret key is required")
	}
	return nil
}

// NewArtworkStore builds the S3 client from static credentials in cfg
func NewArtworkStore(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...Option) (*ArtworkStore, error) {
	if err := checkStorageConfig(cfg); err != nil {
		return nil, err
	}
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &ArtworkStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		pathStyle: cfg.UsePathStyle,
		cdnBase:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		expiry:    defaultPresignExpiry,
		logger:    zap.NewNop(),
	}
	WithPresignExpiration(cfg.PresignExpiration)(store)
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// normalizeEndpoint adds a scheme to a bare host. An empty endpoint means AWS S3.
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
	return strings.TrimRight(endpoint, "/"), nil
}

// EnsureBucket creates the bucket when it is missing. Called once at startup.
func (s *ArtworkStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
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

// GenerateUploadURL generates a presigned PUT URL for an artwork object
func (s *ArtworkStore) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.expiry
	}

	presignReq, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	s.logger.Debug("Presigned artwork upload",
		zap.String("key", storageKey),
		zap.Duration("expires_in", expiresIn))
	return presignReq.URL, time.Now().Add(expiresIn), nil
}

// PublicURL returns the URL the object is served from: the configured CDN
// base when set, otherwise the bucket URL
func (s *ArtworkStore) PublicURL(storageKey string) string {
	key := strings.TrimLeft(storageKey, "/")
	switch {
	case s.cdnBase != "":
		return s.cdnBase + "/" + key
	case s.endpoint == "":
		return "https://" + s.bucket + ".s3.amazonaws.com/" + key
	case s.pathStyle:
		return s.endpoint + "/" + s.bucket + "/" + key
	default:
		u, err := url.Parse(s.endpoint)
		if err != nil {
			return s.endpoint + "/" + s.bucket + "/" + key
		}
		u.Host = s.bucket + "." + u.Host
		return u.String() + "/" + key
	}
}

func (s *ArtworkStore) Bucket() string {
	return s.bucket
}
