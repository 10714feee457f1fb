package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config carries the S3 connection settings
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseLocal  bool
}

// MediaStore stores media files (video files, thumbnails, avatars) in S3
type MediaStore struct {
	client   *s3.Client
	psClient *s3.PresignClient
	bucket   string
}

// NewMediaStore creates a media store backed by S3 or a local
// S3-compatible endpoint (e.g. MinIO)
func NewMediaStore(ctx context.Context, cfg Config) (*MediaStore, error) {
	var client *s3.Client

	if cfg.UseLocal {
		client = s3.New(s3.Options{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			),
			BaseEndpoint: aws.String(cfg.Endpoint),
			UsePathStyle: true,
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &MediaStore{
		client:   client,
		psClient: s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
	}, nil
}

// Upload stores an object and returns its public URL
func (m *MediaStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", m.bucket, key), nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (m *MediaStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

// PresignGet returns a time-limited download URL for an object
func (m *MediaStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := m.psClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}

	return req.URL, nil
}
