package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openapi-it/openapi-client-go/pkg/sinks"
)

// Counters fetches usage counters. With export set the body is also published
// as counters.collected and a sink failure fails the call.
func (s *Session) Counters(ctx context.Context, period, date string, export bool) (string, error) {
	if export && s.dispatch.Len() == 0 {
		return "", ErrNoSinks
	}

	oc, err := s.OAuth()
	if err != nil {
		return "", err
	}
	body, err := oc.GetCounters(ctx, period, date)
	if err != nil {
		return "", err
	}
	if !export {
		return body, nil
	}

	evt := sinks.NewEvent(sinks.EventCountersCollected, s.Environment(), period+"/"+date, body)
	if err := s.publish(ctx, evt); err != nil {
		return body, fmt.Errorf("export counters: %w", err)
	}
	return body, nil
}

// Request performs a Bearer call. data, when non-empty, must be a JSON document.
func (s *Session) Request(ctx context.Context, method, url, data string, params map[string]string) (string, error) {
	var payload any
	if data != "" {
		if !json.Valid([]byte(data)) {
			return "", fmt.Errorf("request data is not valid JSON")
		}
		payload = json.RawMessage(data)
	}

	api, err := s.API()
	if err != nil {
		return "", err
	}
	return api.Request(ctx, method, url, payload, params)
}
