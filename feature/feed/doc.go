// Package feed mirrors a single JSON document (the Data USA population
// feed) into the bucket and announces each update on an SQS queue.
//
// The document is decoded and re-encoded before storage, so a non-JSON
// answer never overwrites the stored copy.
package feed
