package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the guard.
	ApiKey string `mapstructure:"api_key" default:""`
	// RequestTimeoutSeconds bounds how long a synchronous mirror run may take
	// when triggered over HTTP.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"600"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}

// RequestTimeout returns the request timeout, defaulting to ten minutes.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
