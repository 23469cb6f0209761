package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/hirely/hirely/internal/config"
	"github.com/sirupsen/logrus"
)

// S3Store is a BlobStore backed by AWS S3, DigitalOcean Spaces or MinIO
type S3Store struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
	logger    *logrus.Entry
}

// NewS3Store builds a store from the storage configuration. Static
// credentials are used when set; otherwise the SDK's default chain applies.
func NewS3Store(cfg config.StorageConfig, logger *logrus.Entry) (*S3Store, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		// MinIO and most self-hosted endpoints only support path-style addressing
		awsCfg.S3ForcePathStyle = aws.Bool(!strings.Contains(cfg.Endpoint, "digitaloceanspaces.com"))
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}

	logger.WithFields(logrus.Fields{
		"bucket":   cfg.Bucket,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	}).Info("object storage configured")

	return newS3Store(s3.New(sess), cfg.Bucket, publicURL, logger), nil
}

func newS3Store(client s3iface.S3API, bucket, publicURL string, logger *logrus.Entry) *S3Store {
	return &S3Store{client: client, bucket: bucket, publicURL: publicURL, logger: logger}
}

func defaultPublicURL(cfg config.StorageConfig) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Put uploads data as a publicly readable object and returns its URL
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("upload failed")
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.logger.WithFields(logrus.Fields{
		"key":        key,
		"size_bytes": len(data),
	}).Debug("object uploaded")
	return PublicURL(s.publicURL, key), nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
