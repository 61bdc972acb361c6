// Package notify publishes search-completion events so downstream consumers
// can react to fresh listing data without polling the store.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/search"
)

// PubSubNotifier publishes search summaries to a Google Cloud Pub/Sub topic.
// Delivery is best effort: failures are logged and never surface to the
// search path.
type PubSubNotifier struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger

	publish func(ctx context.Context, data []byte) (string, error)
}

// NewPubSub connects a notifier to the given project and topic.
func NewPubSub(ctx context.Context, projectID, topicName string, logger *zap.Logger) (*PubSubNotifier, error) {
	if projectID == "" || topicName == "" {
		return nil, fmt.Errorf("pubsub project and topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicName)

	n := &PubSubNotifier{client: client, topic: topic, logger: logger}
	n.publish = func(ctx context.Context, data []byte) (string, error) {
		return topic.Publish(ctx, &pubsub.Message{Data: data}).Get(ctx)
	}
	return n, nil
}

// SearchCompleted publishes the summary as a JSON message.
func (n *PubSubNotifier) SearchCompleted(ctx context.Context, summary search.Summary) {
	data, err := json.Marshal(summary)
	if err != nil {
		n.logger.Warn("marshal search summary", zap.Error(err))
		return
	}
	id, err := n.publish(ctx, data)
	if err != nil {
		n.logger.Warn("publish search summary",
			zap.String("location", summary.Location),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("search summary published",
		zap.String("message_id", id),
		zap.String("location", summary.Location),
	)
}

// Close stops the topic and releases the client.
func (n *PubSubNotifier) Close() {
	if n.topic != nil {
		n.topic.Stop()
	}
	if n.client != nil {
		if err := n.client.Close(); err != nil {
			n.logger.Warn("close pubsub client", zap.Error(err))
		}
	}
}
