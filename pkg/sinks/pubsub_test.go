package sinks

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubSinkPublishes(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "token-events"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	s, err := openPubSub(ctx, Spec{
		Name:   "gcp",
		Kind:   KindPubSub,
		PubSub: &PubSubSpec{ProjectID: "test-project", Topic: "token-events"},
	}, nil)
	if err != nil {
		t.Fatalf("openPubSub: %v", err)
	}
	d := NewDispatcher(nil, s)
	defer d.Close()

	if _, err := d.Send(ctx, NewEvent(EventTokenCreated, "test", "tok-1", `{"ttl":60}`)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes[AttrEventType] != EventTokenCreated {
		t.Fatalf("unexpected attributes %v", msgs[0].Attributes)
	}
	var evt Event
	if err := json.Unmarshal(msgs[0].Data, &evt); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if evt.Subject != "tok-1" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if _, ok := s.(io.Closer); !ok {
		t.Fatalf("pubsub sink should release its client on Close")
	}
}
