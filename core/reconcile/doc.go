// Package reconcile computes and applies the actions that keep an object
// store mirror consistent with a remote directory listing.
//
// The package has no I/O of its own. Callers hand it raw listing entries and
// a raw store inventory, and it calls back into injected capabilities to
// delete, fetch and write.
//
// # Architecture
//
// The reconcile system consists of three components:
//
// 1. Normalizer: turns raw records into keyed, comparable maps. Malformed
//    records are dropped and reported as anomalies, never fatal. The first
//    record for a key wins.
//
// 2. Engine: a pure diff of the two maps. Withdrawn keys are deleted,
//    changed keys are deleted then re-uploaded, new keys are uploaded. The
//    plan lists all deletes before all uploads, each group sorted by key.
//
// 3. Executor: applies a plan through a Mutator and a Fetcher. Deletes
//    settle before uploads start; each action succeeds or fails on its own
//    and is recorded in the Report.
//
// # Comparison rules
//
// Size compares the declared size stored as "source-size" metadata when
// present, the physical object size otherwise. Timestamps compare by string
// equality on their normalized ISO-8601 form. Unknown against unknown is
// equal; unknown against known is a change.
//
// # Usage Example
//
//	n := &reconcile.Normalizer{Prefix: "bls_data/", Ignore: []string{"bls_data/index.html"}}
//	plan, anomalies, err := reconcile.ReconcileWithPlan(n, entries, objects)
//	if err != nil {
//	    return err
//	}
//	report := reconcile.Execute(ctx, plan, store, fetcher, reconcile.ExecuteOptions{Concurrency: 4})
package reconcile
