package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property_portal_backend/platform/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store implements Backend on AWS S3 through aws-sdk-go-v2.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

// NewS3Store loads AWS configuration and builds the S3 and presign clients.
// Static credentials are used when both keys are set; otherwise the default chain applies.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.GetS3Region()),
	}
	if cfg.GetS3AccessKey() != "" && cfg.GetS3SecretKey() != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.GetS3AccessKey(), cfg.GetS3SecretKey(), ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := cfg.GetS3Endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.GetS3UsePathStyle()
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.GetMediaBucket(),
		ttl:     presignTTL(cfg.GetStoragePresignTTL()),
		now:     time.Now,
	}, nil
}

func (s *S3Store) Driver() string { return config.StorageDriverS3 }

// EnsureReady creates the bucket when HeadBucket reports it missing.
func (s *S3Store) EnsureReady(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) && s3Status(err) != 404 {
		return newError(OpEnsureReady, s.bucket, s3Status(err), err)
	}

	if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return newError(OpEnsureReady, s.bucket, s3Status(err), fmt.Errorf("create bucket: %w", err))
	}
	return nil
}

// IssueUploadURL presigns a PutObject bound to the declared content type and length.
func (s *S3Store) IssueUploadURL(ctx context.Context, key, contentType string, sizeBytes int64) (UploadURL, error) {
	if err := ValidateKey(key); err != nil {
		return UploadURL{}, newError(OpIssueUpload, key, 0, err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if sizeBytes > 0 {
		input.ContentLength = aws.Int64(sizeBytes)
	}

	expiresAt := s.now().Add(s.ttl)
	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return UploadURL{}, newError(OpIssueUpload, key, s3Status(err), err)
	}

	return UploadURL{URL: req.URL, ExpiresAt: expiresAt}, nil
}

// IssueDownloadURL presigns a GetObject for the key.
func (s *S3Store) IssueDownloadURL(ctx context.Context, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", newError(OpIssueDownload, key, 0, err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", newError(OpIssueDownload, key, s3Status(err), err)
	}
	return req.URL, nil
}

// Delete removes the object with a direct DeleteObject call.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return newError(OpDelete, key, s3Status(err), err)
	}
	return nil
}

func s3Status(err error) int {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		return re.HTTPStatusCode()
	}
	return 0
}

var _ Backend = (*S3Store)(nil)
