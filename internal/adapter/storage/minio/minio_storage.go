package minio

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/config"
	"github.com/rentora/posts-service/internal/entity"
)

// ImageStorage keeps post images in a MinIO bucket. The object key is the
// canonical image identifier; it is stored on the post alongside the URL
// so deletion never parses URLs.
type ImageStorage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewImageStorage(cfg *config.MinIOConfig, logger *zap.Logger) (*ImageStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errBucketExists)
		}
		logger.Info("MinIO bucket already exists", zap.String("bucket", cfg.Bucket))
	} else {
		logger.Info("MinIO bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &ImageStorage{
		client: client,
		bucket: cfg.Bucket,
		logger: logger,
	}, nil
}

func (s *ImageStorage) Upload(ctx context.Context, fileName string, data []byte) (entity.ImageRef, error) {
	ext := filepath.Ext(fileName)
	objectKey := fmt.Sprintf("posts/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		s.logger.Error("MinIO PutObject failed",
			zap.String("bucket", s.bucket), zap.String("key", objectKey), zap.Error(err))
		return entity.ImageRef{}, fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	s.logger.Debug("image uploaded",
		zap.String("key", objectKey), zap.Int("size_bytes", len(data)))

	return entity.ImageRef{ID: objectKey, URL: url}, nil
}

func (s *ImageStorage) Delete(ctx context.Context, imageID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, imageID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s from bucket %s: %w", imageID, s.bucket, err)
	}
	return nil
}
