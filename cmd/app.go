package cmd

import (
	"context"
	"fmt"

	"listing-mirror/core/config"
	"listing-mirror/core/database"
	"listing-mirror/core/logger"
	"listing-mirror/core/notify"
	"listing-mirror/core/source"
	"listing-mirror/core/storage"
	"listing-mirror/feature/feed"
	"listing-mirror/feature/history"
	"listing-mirror/feature/integrity"
	"listing-mirror/feature/mirror"

	"go.uber.org/zap"
)

// services holds the components shared by every command.
type services struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Client
	history *history.Repository
}

// bootstrap loads configuration, builds the logger and connects to storage.
// The history database is optional: a failed connection is logged and
// history is disabled.
func bootstrap(ctx context.Context) (*services, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region, l); err != nil {
		return nil, err
	}

	s := &services{cfg: cfg, logger: l, store: client}

	if cfg.Database.Enabled() {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			l.Warn("Optional history database connection failed", zap.Error(err))
			return s, nil
		}
		repo := history.NewRepository(db)
		if err := repo.Migrate(); err != nil {
			l.Warn("History disabled", zap.Error(err))
			return s, nil
		}
		s.history = repo
		l.Info("Connected to history database", zap.String("driver", cfg.Database.Driver))
	}

	return s, nil
}

// mirrorService builds the mirror service with its upstream client.
func (s *services) mirrorService() (*mirror.Service, error) {
	src, err := source.NewClient(s.cfg.Source)
	if err != nil {
		return nil, err
	}
	svc := mirror.NewService(s.store, s.cfg.Storage.Bucket, src, s.cfg.Mirror, s.logger)
	if s.history != nil {
		svc.SetRecorder(s.history)
	}
	return svc, nil
}

// feedService builds the feed service. A missing or broken queue
// configuration leaves the service without a publisher.
func (s *services) feedService(ctx context.Context) *feed.Service {
	var publisher feed.Publisher
	if s.cfg.Notify.Enabled() {
		n, err := notify.New(ctx, s.cfg.Notify, s.logger)
		if err != nil {
			s.logger.Warn("Feed notifications disabled", zap.Error(err))
		} else {
			publisher = n
		}
	}
	return feed.NewService(s.store, s.cfg.Storage.Bucket, s.cfg.Feed, s.cfg.Source.UserAgent, publisher, s.logger)
}

// integrityTargets names what the integrity checks expect in the bucket.
func (s *services) integrityTargets() integrity.Targets {
	return integrity.Targets{
		Prefix:   s.cfg.Mirror.Prefix,
		IndexKey: s.cfg.Mirror.IndexKey(),
		FeedKey:  s.cfg.Feed.Key,
	}
}
