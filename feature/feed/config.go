package feed

// Config holds configuration for the population data feed.
type Config struct {
	// URL is the JSON API to mirror.
	URL string `mapstructure:"url" default:"https://honolulu-api.datausa.io/tesseract/data.jsonrecords?cube=acs_yg_total_population_1&drilldowns=Year%2CNation&locale=en&measures=Population"`
	// Key is the object key the document is stored under.
	Key string `mapstructure:"key" default:"datausa/datausa_population.json"`
	// Source is recorded as object metadata.
	Source string `mapstructure:"source" default:"datausa"`
	// Description is recorded as object metadata.
	Description string `mapstructure:"description" default:"Population data from Data USA"`
	// Insecure skips TLS verification for the feed host.
	Insecure bool `mapstructure:"insecure" default:"false"`
	// TimeoutSeconds bounds the feed request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
