package notify

// Config holds configuration for the SQS notifier.
type Config struct {
	// QueueURL is the queue that receives feed notifications. Empty disables publishing.
	QueueURL string `mapstructure:"queue_url" default:""`
	// Region is the AWS region of the queue.
	Region string `mapstructure:"region" default:"us-east-1"`
	// Endpoint overrides the SQS endpoint, for LocalStack or ElasticMQ.
	Endpoint string `mapstructure:"endpoint" default:""`
	// AccessKey and SecretKey pin static credentials; otherwise the default chain applies.
	AccessKey string `mapstructure:"access_key" default:""`
	SecretKey string `mapstructure:"secret_key" default:""`
}

// Enabled reports whether a queue is configured.
func (c Config) Enabled() bool {
	return c.QueueURL != ""
}
