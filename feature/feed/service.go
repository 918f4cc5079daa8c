package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-mirror/core/notify"
	"listing-mirror/core/source"
	"listing-mirror/core/storage"

	"github.com/imroc/req/v3"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// EventType is the notification type published after a feed update.
const EventType = "feed.updated"

// ErrNotifierMissing is returned when the feed is stored but no queue is configured.
var ErrNotifierMissing = errors.New("feed stored but no notification queue is configured")

// Publisher sends feed notifications.
type Publisher interface {
	Publish(ctx context.Context, event notify.Event) (string, error)
}

// Result describes one feed update.
type Result struct {
	Key       string    `json:"key"`
	Bytes     int       `json:"bytes"`
	Records   int       `json:"records"`
	MessageID string    `json:"message_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service fetches the population feed and stores it in the bucket.
type Service struct {
	client    storage.Client
	bucket    string
	http      *req.Client
	publisher Publisher
	cfg       Config
	logger    *zap.Logger
}

// NewService creates a feed service. publisher may be nil when no queue is configured.
func NewService(client storage.Client, bucket string, cfg Config, userAgent string, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	httpClient := source.NewHTTPClient(userAgent, time.Duration(timeout)*time.Second, 1)
	if cfg.Insecure {
		httpClient.EnableInsecureSkipVerify()
	}

	return &Service{
		client:    client,
		bucket:    bucket,
		http:      httpClient,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Sync downloads the feed, stores it re-encoded as compact JSON and
// publishes a notification.
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	raw, err := source.Get(ctx, s.http, s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("feed is not valid JSON: %w", err)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.cfg.Key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"source":      s.cfg.Source,
			"description": s.cfg.Description,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store feed: %w", err)
	}

	result := &Result{
		Key:       s.cfg.Key,
		Bytes:     len(body),
		Records:   countRecords(doc),
		UpdatedAt: time.Now().UTC(),
	}
	s.logger.Info("Stored feed",
		zap.String("key", result.Key),
		zap.Int("bytes", result.Bytes),
		zap.Int("records", result.Records))

	if s.publisher == nil {
		return result, ErrNotifierMissing
	}

	id, err := s.publisher.Publish(ctx, notify.Event{
		Type:   EventType,
		Bucket: s.bucket,
		Key:    result.Key,
		Size:   int64(result.Bytes),
		Source: s.cfg.Source,
	})
	if err != nil {
		return result, err
	}
	result.MessageID = id
	return result, nil
}

// countRecords counts rows in the two shapes the feed API serves: a bare
// array or an object with a "data" array.
func countRecords(doc any) int {
	switch v := doc.(type) {
	case []any:
		return len(v)
	case map[string]any:
		if rows, ok := v["data"].([]any); ok {
			return len(rows)
		}
	}
	return 0
}
