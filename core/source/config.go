package source

// Config holds configuration for the upstream publisher.
type Config struct {
	// BaseURL is the scheme and host that listing links resolve against.
	BaseURL string `mapstructure:"base_url" default:"https://download.bls.gov"`
	// ListingPath is the directory listing page to mirror.
	ListingPath string `mapstructure:"listing_path" default:"/pub/time.series/pr/"`
	// UserAgent identifies the mirror to the publisher, which rejects anonymous clients.
	UserAgent string `mapstructure:"user_agent" default:"listing-mirror/1.0"`
	// TimeoutSeconds bounds each upstream request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RetryCount is how many times a failed request is retried by the transport.
	RetryCount int `mapstructure:"retry_count" default:"2"`
}
