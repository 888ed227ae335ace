package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/backend"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds configuration for S3 or MinIO storage.
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool // Required for MinIO
	PublicURL       string
}

// S3Storage maps each bucket name onto an S3 bucket of the same name.
type S3Storage struct {
	client    *s3.Client
	publicURL string
}

func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}

	return &S3Storage{
		client:    s3.NewFromConfig(awsCfg, s3Opts...),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *S3Storage) From(bucket string) backend.Bucket {
	return &s3Bucket{client: s.client, bucket: bucket, publicURL: s.publicURL}
}

type s3Bucket struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func (b *s3Bucket) Upload(ctx context.Context, path string, body io.Reader, opts backend.UploadOptions) error {
	if !opts.Upsert {
		exists, err := b.exists(ctx, path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("object %s/%s already exists", b.bucket, path)
		}
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(path),
		Body:   body,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(cacheControlHeader(opts.CacheControl))
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (b *s3Bucket) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.bucket),
			Key:    aws.String(p),
		})
		if err != nil {
			return fmt.Errorf("failed to delete object from S3: %w", err)
		}
	}
	return nil
}

func (b *s3Bucket) PublicURL(path string) string {
	return fmt.Sprintf("%s/%s/%s", b.publicURL, b.bucket, path)
}

func (b *s3Bucket) exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// cacheControlHeader accepts either a bare max-age in seconds or a full header value.
func cacheControlHeader(v string) string {
	if strings.Trim(v, "0123456789") == "" {
		return "max-age=" + v
	}
	return v
}
