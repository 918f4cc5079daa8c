package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// EnsureBucket verifies the bucket exists and creates it when missing.
func EnsureBucket(ctx context.Context, client Client, bucket, region string, logger *zap.Logger) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	logger.Info("Created missing bucket", zap.String("bucket", bucket))
	return nil
}

// ListWithMetadata lists every object under prefix, recursively, with its
// user metadata. Listings that do not carry metadata (plain S3) fall back to
// one StatObject per key.
func ListWithMetadata(ctx context.Context, client Client, bucket, prefix string) ([]minio.ObjectInfo, error) {
	opts := minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	}

	var objects []minio.ObjectInfo
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, obj.Err)
		}
		objects = append(objects, obj)
	}

	for i, obj := range objects {
		if obj.UserMetadata != nil {
			continue
		}
		info, err := client.StatObject(ctx, bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to stat object %s: %w", obj.Key, err)
		}
		objects[i].UserMetadata = info.UserMetadata
		if objects[i].UserMetadata == nil {
			objects[i].UserMetadata = map[string]string{}
		}
	}

	return objects, nil
}
