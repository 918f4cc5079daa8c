// Package history persists applied mirror runs with GORM.
//
// Each run is stored in mirror_runs with its plan and report counts, and
// each attempted action in mirror_run_items in plan order. The Repository
// implements mirror.Recorder. The feature is only loaded when a database is
// configured.
package history
