package checks

import (
	"context"
	"fmt"

	"listing-mirror/core/storage"

	"github.com/minio/minio-go/v7"
)

// CheckDocuments returns the keys among required that are not in the bucket.
func CheckDocuments(ctx context.Context, client storage.Client, bucket string, required []string) ([]string, error) {
	var missing []string

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	for _, key := range required {
		opts := minio.ListObjectsOptions{
			Prefix:    key,
			Recursive: false,
			MaxKeys:   1,
		}

		found := false
		for obj := range client.ListObjects(ctx, bucket, opts) {
			found = obj.Err == nil && obj.Key == key
			break
		}

		if !found {
			missing = append(missing, key)
		}
	}

	return missing, nil
}
