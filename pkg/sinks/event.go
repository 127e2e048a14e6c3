package sinks

import (
	"encoding/json"
	"time"
)

// Event types emitted by the CLI.
const (
	EventTokenCreated      = "token.created"
	EventTokenDeleted      = "token.deleted"
	EventCountersCollected = "counters.collected"
)

// AttrEventType names the message attribute (or HTTP header suffix) carrying Event.Type.
const AttrEventType = "event_type"

// Event is the document every sink receives.
type Event struct {
	Type        string          `json:"type"`
	Environment string          `json:"environment"`
	Subject     string          `json:"subject"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	EmittedAt   time.Time       `json:"emitted_at"`
}

// NewEvent stamps an Event with the current time. A payload that is already
// JSON is embedded as is; other text becomes a JSON string.
func NewEvent(typ, environment, subject, payload string) Event {
	evt := Event{
		Type:        typ,
		Environment: environment,
		Subject:     subject,
		EmittedAt:   time.Now().UTC(),
	}
	switch {
	case payload == "":
	case json.Valid([]byte(payload)):
		evt.Payload = json.RawMessage(payload)
	default:
		evt.Payload, _ = json.Marshal(payload)
	}
	return evt
}

func (e Event) encode() (Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{EventType: e.Type, Body: body}, nil
}
