// Package source reads the upstream publisher: it downloads the HTML
// directory listing, parses it into reconcile.RawEntry values, and fetches
// file bodies for the executor.
//
// The publisher refuses requests without an identifying user agent, so the
// configured UserAgent is sent on every request. Transport errors and 5xx
// answers are retried RetryCount times with a fixed one second interval.
//
// # Usage
//
//	client, err := source.NewClient(cfg.Source)
//	entries, err := client.Listing(ctx)
//	body, err := client.Fetch(ctx, entries[0].Link)
package source
