// Package sinks delivers CLI events (token issued, token revoked, usage
// counters) to external systems: webhooks, SQS queues, SNS topics and
// Pub/Sub topics.
package sinks

import "context"

// Message is an encoded Event ready for delivery.
type Message struct {
	EventType string
	Body      []byte
}

// Sink delivers messages to one destination.
type Sink interface {
	Name() string
	Kind() string
	Send(ctx context.Context, msg Message) error
}

// Logger is the logging surface sinks use.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type nopLogger struct{}

func (nopLogger) InfoObj(string, string, interface{})  {}
func (nopLogger) DebugObj(string, string, interface{}) {}
func (nopLogger) WarnObj(string, string, interface{})  {}
func (nopLogger) ErrorObj(string, string, interface{}) {}

func orNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// deliverFunc hands a message to a broker and returns the broker's message id.
type deliverFunc func(ctx context.Context, msg Message) (string, error)

// brokerSink adapts a broker client call to Sink.
type brokerSink struct {
	name    string
	kind    string
	deliver deliverFunc
	release func() error
	log     Logger
}

func (b *brokerSink) Name() string { return b.name }
func (b *brokerSink) Kind() string { return b.kind }

func (b *brokerSink) Send(ctx context.Context, msg Message) error {
	id, err := b.deliver(ctx, msg)
	if err != nil {
		return err
	}
	b.log.DebugObj("sink delivered event", "sink_delivery", map[string]any{
		"sink":       b.name,
		"kind":       b.kind,
		"event_type": msg.EventType,
		"message_id": id,
	})
	return nil
}

// Close releases the broker client, if the sink owns one.
func (b *brokerSink) Close() error {
	if b.release == nil {
		return nil
	}
	return b.release()
}
