package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Mutator is the store capability the executor writes through.
type Mutator interface {
	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
	// Write stores data under key with the given user metadata.
	Write(ctx context.Context, key string, data []byte, metadata map[string]string) error
}

// Fetcher retrieves source bytes by fetch reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// ExecuteOptions controls plan execution.
type ExecuteOptions struct {
	// Concurrency bounds how many actions of one group run at a time.
	// Values below 2 execute sequentially.
	Concurrency int

	// Logger receives per-action logs. Nil disables logging.
	Logger *zap.Logger
}

// MetadataFor returns the stored metadata that lets the next run compare
// the uploaded object against its source record.
func MetadataFor(record SourceRecord) map[string]string {
	meta := map[string]string{
		MetaSourceSize:         MetaUnknown,
		MetaSourceLastModified: MetaUnknown,
	}
	if record.Size != nil {
		meta[MetaSourceSize] = strconv.FormatInt(*record.Size, 10)
	}
	if record.LastModified != "" {
		meta[MetaSourceLastModified] = record.LastModified
	}
	return meta
}

// Execute applies a plan: every delete settles before the first upload
// starts. Each action is attempted independently and its outcome recorded
// in plan order; a failure never stops the remaining actions. If ctx is
// cancelled, actions not yet started are reported as canceled failures and
// already applied actions stay applied.
func Execute(ctx context.Context, plan *Plan, store Mutator, fetch Fetcher, opts ExecuteOptions) *Report {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	items := make([]ReportItem, len(plan.Actions))

	var deleteIdx, uploadIdx []int
	for i, action := range plan.Actions {
		switch action.Type {
		case ActionDelete:
			deleteIdx = append(deleteIdx, i)
		case ActionUpload:
			uploadIdx = append(uploadIdx, i)
		default:
			items[i] = failure(action, StageStore, fmt.Errorf("unknown action type %q", action.Type))
		}
	}

	runGroup(ctx, plan, deleteIdx, opts.Concurrency, items, func(ctx context.Context, action Action) ReportItem {
		return applyDelete(ctx, store, logger, action)
	})
	runGroup(ctx, plan, uploadIdx, opts.Concurrency, items, func(ctx context.Context, action Action) ReportItem {
		return applyUpload(ctx, store, fetch, logger, action)
	})

	report := &Report{Items: items}
	for _, item := range items {
		report.Summary.Attempted++
		if item.Outcome == OutcomeSuccess {
			report.Summary.Succeeded++
		} else {
			report.Summary.Failed++
		}
	}
	return report
}

// runGroup executes the indexed actions and returns once all have settled.
func runGroup(ctx context.Context, plan *Plan, idx []int, limit int, items []ReportItem, apply func(context.Context, Action) ReportItem) {
	if limit < 1 {
		limit = 1
	}

	// A plain group: one failing action must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(limit)

	for _, i := range idx {
		action := plan.Actions[i]
		if err := ctx.Err(); err != nil {
			items[i] = failure(action, StageCanceled, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i] = failure(action, StageCanceled, err)
				return nil
			}
			items[i] = apply(ctx, action)
			return nil
		})
	}

	_ = g.Wait()
}

func applyDelete(ctx context.Context, store Mutator, logger *zap.Logger, action Action) ReportItem {
	if err := store.Delete(ctx, action.Key); err != nil {
		logger.Warn("Delete failed", zap.String("key", action.Key), zap.Error(err))
		return failure(action, StageStore, err)
	}
	logger.Debug("Deleted object", zap.String("key", action.Key), zap.String("reason", action.Reason))
	return success(action)
}

func applyUpload(ctx context.Context, store Mutator, fetch Fetcher, logger *zap.Logger, action Action) ReportItem {
	if action.Record == nil {
		return failure(action, StageFetch, errors.New("upload action without source record"))
	}
	record := *action.Record

	data, err := fetch.Fetch(ctx, record.FetchRef)
	if err != nil {
		logger.Warn("Fetch failed",
			zap.String("key", action.Key),
			zap.String("ref", record.FetchRef),
			zap.Error(err),
		)
		return failure(action, StageFetch, err)
	}

	if record.Size != nil && int64(len(data)) != *record.Size {
		logger.Warn("Fetched size differs from declared size",
			zap.String("key", action.Key),
			zap.Int64("declared", *record.Size),
			zap.Int("fetched", len(data)),
		)
	}

	if err := store.Write(ctx, action.Key, data, MetadataFor(record)); err != nil {
		logger.Warn("Write failed", zap.String("key", action.Key), zap.Error(err))
		return failure(action, StageStore, err)
	}

	logger.Debug("Uploaded object",
		zap.String("key", action.Key),
		zap.Int("bytes", len(data)),
		zap.String("reason", action.Reason),
	)
	return success(action)
}

func success(action Action) ReportItem {
	return ReportItem{Key: action.Key, Action: action.Type, Outcome: OutcomeSuccess}
}

func failure(action Action, stage Stage, err error) ReportItem {
	capErr := &CapabilityError{Stage: stage, Key: action.Key, Err: err}
	return ReportItem{
		Key:     action.Key,
		Action:  action.Type,
		Outcome: OutcomeFailure,
		Stage:   stage,
		Reason:  capErr.Error(),
	}
}
