package integrity

import (
	"context"
	"path"

	"listing-mirror/core/storage"
	"listing-mirror/feature/integrity/checks"

	"go.uber.org/zap"
)

// Targets names what the checks expect to find in the bucket.
type Targets struct {
	// Prefix is the mirror prefix.
	Prefix string
	// IndexKey is the generated index page.
	IndexKey string
	// FeedKey is the stored feed document. Empty skips it.
	FeedKey string
}

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	targets Targets
	logger  *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, bucket string, targets Targets, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		bucket:  bucket,
		targets: targets,
		logger:  logger,
	}
}

// Folders returns the folders the bucket must contain.
func (s *Service) Folders() []string {
	folders := []string{s.targets.Prefix}
	if s.targets.FeedKey != "" {
		if dir := path.Dir(s.targets.FeedKey); dir != "." {
			folders = append(folders, dir+"/")
		}
	}
	return folders
}

// Documents returns the single objects the bucket must contain.
func (s *Service) Documents() []string {
	docs := []string{s.targets.IndexKey}
	if s.targets.FeedKey != "" {
		docs = append(docs, s.targets.FeedKey)
	}
	return docs
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket, s.Folders())
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckDocuments returns the missing index and feed documents.
func (s *Service) CheckDocuments(ctx context.Context) ([]string, error) {
	return checks.CheckDocuments(ctx, s.client, s.bucket, s.Documents())
}

// CheckMetadata reports mirrored objects without comparison metadata.
func (s *Service) CheckMetadata(ctx context.Context) (*checks.MetadataReport, error) {
	return checks.CheckMetadata(ctx, s.client, s.bucket, s.targets.Prefix, []string{s.targets.IndexKey})
}
