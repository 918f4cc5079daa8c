package history

import (
	"context"
	"errors"
	"fmt"

	"listing-mirror/feature/mirror"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// DefaultLimit bounds List when no limit is given.
const DefaultLimit = 20

// Repository stores mirror runs.
type Repository struct {
	db *gorm.DB
}

var _ mirror.Recorder = (*Repository)(nil)

// NewRepository creates a repository over an open database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the history tables.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&RunRecord{}, &ItemRecord{}); err != nil {
		return fmt.Errorf("failed to migrate history tables: %w", err)
	}
	return nil
}

// Record stores an applied run. Dry runs are not recorded.
func (r *Repository) Record(ctx context.Context, run *mirror.Run) error {
	if run.DryRun || run.Report == nil {
		return nil
	}

	rec := FromRun(run)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs without their items, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var runs []RunRecord
	err := r.db.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its items in plan order.
func (r *Repository) Get(ctx context.Context, id string) (*RunRecord, error) {
	var run RunRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return &run, nil
}

// FromRun flattens a mirror run into its stored form.
func FromRun(run *mirror.Run) *RunRecord {
	s := run.Plan.Summary
	rec := &RunRecord{
		ID:          run.ID,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		SourceItems: s.SourceItems,
		StoreItems:  s.StoreItems,
		Withdrawn:   s.Withdrawn,
		Changed:     s.Changed,
		New:         s.New,
		Unchanged:   s.Unchanged,
		Anomalies:   len(run.Anomalies),
		Attempted:   run.Report.Summary.Attempted,
		Succeeded:   run.Report.Summary.Succeeded,
		Failed:      run.Report.Summary.Failed,
		Converged:   run.Report.Converged(),
	}
	if run.Index != nil {
		rec.IndexKey = run.Index.Key
	}

	for i, item := range run.Report.Items {
		rec.Items = append(rec.Items, ItemRecord{
			RunID:    run.ID,
			Position: i,
			Key:      item.Key,
			Action:   string(item.Action),
			Outcome:  string(item.Outcome),
			Stage:    string(item.Stage),
			Reason:   item.Reason,
		})
	}
	return rec
}
