// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the mirror can
// run against AWS S3 or a self-hosted MinIO instance, and so tests can use
// the testify mock in core/storage/mocks.
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket liveness, used by EnsureBucket.
//   - PutObject / GetObject / RemoveObject: single-object writes and reads.
//   - ListObjects / StatObject: inventory, used by ListWithMetadata.
//   - PresignedGetObject: time-limited links for the generated index page.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	objects, err := storage.ListWithMetadata(ctx, client, cfg.Storage.Bucket, "bls_data/")
package storage
