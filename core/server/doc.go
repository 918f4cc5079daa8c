// Package server holds the HTTP server configuration.
//
// The `start` command serves the mirror API (dry-run plans, sync triggers,
// run history) on the configured port behind an optional API key.
package server
