// Package config provides configuration management for the listing mirror.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section and are registered by reflection, so every key can be overridden
// with SECTION_KEY environment variables.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, request timeout)
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Database: optional run history database (mysql, sqlite)
//   - Source: upstream publisher base URL, listing path and user agent
//   - Mirror: key prefix, concurrency, index page and teardown guard
//   - Feed: population JSON feed location and metadata
//   - Notify: SQS queue for feed notifications
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Mirror.Prefix)
package config
