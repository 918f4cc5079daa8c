// Package mirror runs the listing mirror against one bucket prefix.
//
// A run reads the upstream listing and the bucket inventory, computes a plan
// with core/reconcile and applies it through the Store adapter. After an
// applied run the index page under the prefix is regenerated with presigned
// links. Runs are single-writer within a process: concurrent Sync calls with
// the same options join the run already in flight.
//
// An empty listing against a non-empty mirror is refused unless teardown is
// allowed.
//
// # Routes
//
//   - GET  /mirror/plan   dry run
//   - POST /mirror/sync   apply (?dry_run, ?allow_teardown, ?concurrency)
//   - POST /mirror/index  regenerate the index page
package mirror
