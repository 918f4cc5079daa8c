package mirror

import "time"

// Config holds configuration for mirror runs.
type Config struct {
	// Prefix is the key prefix the mirror owns inside the bucket.
	Prefix string `mapstructure:"prefix" default:"bls_data/"`
	// Concurrency bounds parallel actions within each plan group.
	Concurrency int `mapstructure:"concurrency" default:"4"`
	// IndexName is the generated index page, stored under Prefix.
	IndexName string `mapstructure:"index_name" default:"index.html"`
	// PresignSeconds is the lifetime of links on the index page.
	PresignSeconds int `mapstructure:"presign_seconds" default:"86400"`
	// AllowTeardown lets an empty listing delete every mirrored object.
	AllowTeardown bool `mapstructure:"allow_teardown" default:"false"`
	// BuildIndex rebuilds the index page after every applied sync.
	BuildIndex bool `mapstructure:"build_index" default:"true"`
}

// IndexKey returns the full key of the index page.
func (c Config) IndexKey() string {
	return c.Prefix + c.IndexName
}

// PresignExpiry returns the lifetime of presigned links.
func (c Config) PresignExpiry() time.Duration {
	if c.PresignSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.PresignSeconds) * time.Second
}
