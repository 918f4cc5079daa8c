package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// ErrNoQueue is returned when publishing without a configured queue URL.
var ErrNoQueue = errors.New("notify: queue url is not configured")

// SQSClient defines the SQS operations used by the notifier.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Event is the body of a notification message.
type Event struct {
	Type   string `json:"type"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	Source string `json:"source,omitempty"`
}

// Notifier publishes events to a single SQS queue.
type Notifier struct {
	client   SQSClient
	queueURL string
	logger   *zap.Logger
}

// New loads AWS configuration and creates a notifier for the configured queue.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, ErrNoQueue
	}

	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: load aws config: %w", err)
	}

	client := sqs.NewFromConfig(awsConfig, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithClient(client, cfg.QueueURL, logger), nil
}

// NewWithClient creates a notifier with a custom client.
func NewWithClient(client SQSClient, queueURL string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{client: client, queueURL: queueURL, logger: logger}
}

// Publish sends the event as a JSON message and returns the message ID.
func (n *Notifier) Publish(ctx context.Context, event Event) (string, error) {
	if n.queueURL == "" {
		return "", ErrNoQueue
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("notify: encode event: %w", err)
	}

	out, err := n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("notify: send message to %s: %w", n.queueURL, err)
	}

	id := aws.ToString(out.MessageId)
	n.logger.Info("Published notification",
		zap.String("type", event.Type),
		zap.String("key", event.Key),
		zap.String("message_id", id))
	return id, nil
}
