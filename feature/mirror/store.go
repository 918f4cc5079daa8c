package mirror

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"

	"listing-mirror/core/reconcile"
	"listing-mirror/core/storage"

	"github.com/minio/minio-go/v7"
)

// Store adapts a storage.Client bucket to the reconcile capabilities.
type Store struct {
	client storage.Client
	bucket string
	prefix string
}

var _ reconcile.Mutator = (*Store)(nil)

// NewStore creates a store adapter for the given bucket and key prefix.
func NewStore(client storage.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Inventory lists every object under the prefix with its user metadata.
func (s *Store) Inventory(ctx context.Context) ([]reconcile.RawObject, error) {
	objects, err := storage.ListWithMetadata(ctx, s.client, s.bucket, s.prefix)
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.RawObject, 0, len(objects))
	for _, obj := range objects {
		out = append(out, reconcile.RawObject{
			Key:      obj.Key,
			Size:     obj.Size,
			Metadata: obj.UserMetadata,
		})
	}
	return out, nil
}

// Delete removes one object.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Write uploads data under key with the given user metadata.
func (s *Store) Write(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	return s.put(ctx, key, data, metadata, contentTypeFor(key))
}

func (s *Store) put(ctx context.Context, key string, data []byte, metadata map[string]string, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// contentTypeFor guesses a content type from the key extension. The
// publisher's series files have no registered extension and are plain text.
func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "text/plain; charset=utf-8"
}
