package reconcile

import (
	"context"
	"fmt"
)

// ReconcileWithPlan normalizes both raw inputs and returns the plan that
// converges the store to the source, together with every record anomaly.
// It does NOT execute actions; use Execute for that.
func ReconcileWithPlan(n *Normalizer, entries []RawEntry, objects []RawObject) (*Plan, []Anomaly, error) {
	source, sourceAnomalies, err := n.NormalizeSource(entries)
	if err != nil {
		return nil, sourceAnomalies, fmt.Errorf("failed to normalize source listing: %w", err)
	}

	store, storeAnomalies, err := n.NormalizeStore(objects)
	anomalies := append(sourceAnomalies, storeAnomalies...)
	if err != nil {
		return nil, anomalies, fmt.Errorf("failed to normalize store inventory: %w", err)
	}

	return Reconcile(source, store), anomalies, nil
}

// ReconcileAndApply is a convenience wrapper that plans and applies in one
// call. It returns the plan, the execution report and any structural error.
func ReconcileAndApply(
	ctx context.Context,
	n *Normalizer,
	entries []RawEntry,
	objects []RawObject,
	store Mutator,
	fetch Fetcher,
	opts ExecuteOptions,
) (*Plan, *Report, []Anomaly, error) {
	plan, anomalies, err := ReconcileWithPlan(n, entries, objects)
	if err != nil {
		return nil, nil, anomalies, err
	}

	report := Execute(ctx, plan, store, fetch, opts)
	return plan, report, anomalies, nil
}
