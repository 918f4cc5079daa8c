package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"listing-mirror/core/logger"
	"listing-mirror/core/reconcile"
	"listing-mirror/core/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrTeardownRefused is returned when an empty listing would delete every
// mirrored object and teardown was not allowed.
var ErrTeardownRefused = errors.New("refusing to delete every mirrored object for an empty listing")

// Source is the upstream publisher: a listing provider and a fetcher.
type Source interface {
	reconcile.Fetcher
	Listing(ctx context.Context) ([]reconcile.RawEntry, error)
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run *Run) error
}

// SyncOptions controls one mirror run.
type SyncOptions struct {
	// DryRun computes the plan without executing it.
	DryRun bool
	// AllowTeardown permits a plan that empties the mirror.
	AllowTeardown bool
	// Concurrency overrides the configured concurrency when positive.
	Concurrency int
}

// Run is the result of one mirror run.
type Run struct {
	ID         string              `json:"id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	DryRun     bool                `json:"dry_run"`
	Plan       *reconcile.Plan     `json:"plan"`
	Report     *reconcile.Report   `json:"report,omitempty"`
	Anomalies  []reconcile.Anomaly `json:"anomalies"`
	Index      *IndexResult        `json:"index,omitempty"`
}

// Converged reports whether the run was applied and every action succeeded.
func (r *Run) Converged() bool {
	return r.Report != nil && r.Report.Converged()
}

// Service orchestrates mirror runs against one bucket prefix.
type Service struct {
	client     storage.Client
	bucket     string
	store      *Store
	source     Source
	normalizer *reconcile.Normalizer
	recorder   Recorder
	cfg        Config
	logger     *zap.Logger
	group      singleflight.Group

	mu      sync.Mutex
	flights map[string]*flight
}

// flight holds the context of one shared sync pass. It is cancelled once
// every caller waiting on the pass has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// NewService creates a new mirror service.
func NewService(client storage.Client, bucket string, src Source, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		bucket: bucket,
		store:  NewStore(client, bucket, cfg.Prefix),
		source: src,
		normalizer: &reconcile.Normalizer{
			Prefix: cfg.Prefix,
			Ignore: []string{cfg.IndexKey()},
			Logger: logger,
		},
		cfg:     cfg,
		logger:  logger,
		flights: make(map[string]*flight),
	}
}

// SetRecorder attaches a run recorder. Nil disables recording.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Plan computes the actions a sync would take without applying them.
func (s *Service) Plan(ctx context.Context) (*Run, error) {
	return s.run(ctx, SyncOptions{DryRun: true})
}

// Sync runs one mirror pass. Concurrent calls with the same options share a
// single pass. The pass keeps running while any caller still waits on it and
// is bounded by the first caller's deadline.
func (s *Service) Sync(ctx context.Context, opts SyncOptions) (*Run, error) {
	if opts.DryRun {
		return s.run(ctx, opts)
	}

	key := fmt.Sprintf("sync:%t:%d", opts.AllowTeardown, opts.Concurrency)
	f, release := s.join(ctx, key)
	defer release()

	ch := s.group.DoChan(key, func() (any, error) {
		return s.run(f.ctx, opts)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Joined in-flight mirror run")
		}
		run, _ := res.Val.(*Run)
		return run, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// join registers ctx as a waiter on the pass for key. The returned func
// must be called once the caller stops waiting.
func (s *Service) join(ctx context.Context, key string) (*flight, func()) {
	s.mu.Lock()
	f, ok := s.flights[key]
	if !ok {
		base := context.WithoutCancel(ctx)
		f = &flight{}
		if deadline, has := ctx.Deadline(); has {
			f.ctx, f.cancel = context.WithDeadline(base, deadline)
		} else {
			f.ctx, f.cancel = context.WithCancel(base)
		}
		s.flights[key] = f
	}
	f.waiters++
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			f.waiters--
			if f.waiters > 0 {
				return
			}
			f.cancel()
			if s.flights[key] == f {
				delete(s.flights, key)
			}
		})
	}
	stop := context.AfterFunc(ctx, release)

	return f, func() {
		stop()
		release()
	}
}

func (s *Service) run(ctx context.Context, opts SyncOptions) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    opts.DryRun,
	}
	l := logger.WithRun(s.logger, run.ID)

	entries, err := s.source.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source listing: %w", err)
	}

	objects, err := s.store.Inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read store inventory: %w", err)
	}

	plan, anomalies, err := reconcile.ReconcileWithPlan(s.normalizer, entries, objects)
	if err != nil {
		return nil, err
	}
	run.Plan = plan
	run.Anomalies = anomalies

	l.Info("Computed mirror plan",
		zap.Int("source_items", plan.Summary.SourceItems),
		zap.Int("store_items", plan.Summary.StoreItems),
		zap.Int("deletes", plan.Summary.DeleteActions),
		zap.Int("uploads", plan.Summary.UploadActions),
		zap.Int("unchanged", plan.Summary.Unchanged),
		zap.Int("anomalies", len(anomalies)))

	if opts.DryRun {
		run.FinishedAt = time.Now().UTC()
		return run, nil
	}

	if isTeardown(plan) && !(opts.AllowTeardown || s.cfg.AllowTeardown) {
		l.Warn("Refusing teardown plan", zap.Int("deletes", plan.Summary.DeleteActions))
		return run, ErrTeardownRefused
	}

	concurrency := s.cfg.Concurrency
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	run.Report = reconcile.Execute(ctx, plan, s.store, s.source, reconcile.ExecuteOptions{
		Concurrency: concurrency,
		Logger:      l,
	})

	if s.cfg.BuildIndex && ctx.Err() == nil {
		if idx, err := s.RebuildIndex(ctx); err != nil {
			l.Warn("Failed to rebuild index", zap.Error(err))
		} else {
			run.Index = idx
		}
	}

	run.FinishedAt = time.Now().UTC()
	l.Info("Mirror run finished",
		zap.Int("attempted", run.Report.Summary.Attempted),
		zap.Int("succeeded", run.Report.Summary.Succeeded),
		zap.Int("failed", run.Report.Summary.Failed),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, run); err != nil {
			l.Warn("Failed to record mirror run", zap.Error(err))
		}
	}

	return run, nil
}

// isTeardown reports whether the plan empties a non-empty mirror because the
// source listed nothing.
func isTeardown(plan *reconcile.Plan) bool {
	return plan.Summary.SourceItems == 0 && plan.Summary.StoreItems > 0
}
