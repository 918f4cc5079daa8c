// Package notify publishes mirror events to an Amazon SQS queue.
//
// Downstream consumers (analytics jobs) subscribe to the queue and react when
// a feed document lands in the bucket. The Notifier depends on the narrow
// SQSClient interface so tests can substitute a fake.
package notify
