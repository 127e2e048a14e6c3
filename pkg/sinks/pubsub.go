package sinks

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// openPubSub connects to the topic named in spec. The client library honours
// PUBSUB_EMULATOR_HOST.
func openPubSub(ctx context.Context, spec Spec, log Logger) (Sink, error) {
	p := spec.PubSub
	if p == nil {
		return nil, fmt.Errorf("pubsub block is required")
	}
	var opts []option.ClientOption
	if p.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(p.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, p.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	topic := client.Topic(p.Topic)

	return &brokerSink{
		name: spec.Name,
		kind: KindPubSub,
		log:  orNop(log),
		deliver: func(ctx context.Context, msg Message) (string, error) {
			res := topic.Publish(ctx, &pubsub.Message{
				Data:       msg.Body,
				Attributes: map[string]string{AttrEventType: msg.EventType},
			})
			id, err := res.Get(ctx)
			if err != nil {
				return "", fmt.Errorf("pubsub publish: %w", err)
			}
			return id, nil
		},
		release: func() error {
			topic.Stop()
			return client.Close()
		},
	}, nil
}
