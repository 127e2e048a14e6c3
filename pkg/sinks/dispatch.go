package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type opener func(ctx context.Context, spec Spec, log Logger) (Sink, error)

var openers = map[string]opener{
	KindHTTP:   openHTTP,
	KindSQS:    openSQS,
	KindSNS:    openSNS,
	KindPubSub: openPubSub,
}

// Dispatcher sends each event to every sink it holds.
type Dispatcher struct {
	sinks []Sink
	log   Logger
}

// NewDispatcher wraps already-built sinks. Nil entries are skipped.
func NewDispatcher(log Logger, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{log: orNop(log)}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

// Open builds a sink for every spec. When one fails, the sinks opened so far
// are closed and the error names the failing spec.
func Open(ctx context.Context, specs []Spec, log Logger) (*Dispatcher, error) {
	d := NewDispatcher(log)
	for _, spec := range specs {
		open, ok := openers[spec.Kind]
		if !ok {
			_ = d.Close()
			return nil, fmt.Errorf("sink %q: unknown kind %q", spec.Name, spec.Kind)
		}
		s, err := open(ctx, spec, d.log)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("open sink %q: %w", spec.Name, err)
		}
		d.sinks = append(d.sinks, s)
	}
	return d, nil
}

// Len reports how many sinks the dispatcher holds.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.sinks)
}

// Send encodes evt once and hands it to every sink. It returns how many sinks
// accepted it, along with the joined failures of the rest.
func (d *Dispatcher) Send(ctx context.Context, evt Event) (int, error) {
	if d.Len() == 0 {
		return 0, nil
	}
	msg, err := evt.encode()
	if err != nil {
		return 0, fmt.Errorf("encode event: %w", err)
	}

	delivered := 0
	var errs []error
	for _, s := range d.sinks {
		if err := s.Send(ctx, msg); err != nil {
			d.log.WarnObj("sink rejected event", "sink_error", map[string]any{
				"sink":       s.Name(),
				"kind":       s.Kind(),
				"event_type": evt.Type,
				"error":      err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s sink %q: %w", s.Kind(), s.Name(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Close closes every sink that holds a connection.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, s := range d.sinks {
		c, ok := s.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink %q: %w", s.Name(), err))
		}
	}
	d.sinks = nil
	return errors.Join(errs...)
}
