package audit

import (
	"context"
	"fmt"
	"strings"
)

// Builder opens a Sink for one config entry.
type Builder func(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error)

// Registry maps a lower-case sink type to its Builder.
type Registry map[string]Builder

// DefaultRegistry knows every sink type in this package.
func DefaultRegistry() Registry {
	return Registry{
		TypeHTTP:   newHTTPSink,
		TypeSQS:    newSQSSink,
		TypeSNS:    newSNSSink,
		TypePubSub: newPubSubSink,
	}
}

// Open builds a Fanout over cfgs. Every entry's type is resolved before any
// sink is opened; sinks opened before a later failure are closed.
func (r Registry) Open(ctx context.Context, cfgs []SinkConfig, log Logger) (*Fanout, error) {
	builders := make([]Builder, len(cfgs))
	for i, cfg := range cfgs {
		b, ok := r[strings.ToLower(strings.TrimSpace(cfg.Type))]
		if !ok || b == nil {
			return nil, fmt.Errorf("sink %q: unknown type %q", cfg.ID, cfg.Type)
		}
		builders[i] = b
	}

	sinks := make([]Sink, 0, len(cfgs))
	for i, cfg := range cfgs {
		sink, err := builders[i](ctx, cfg, log)
		if err != nil {
			_ = NewFanout(sinks).Close()
			return nil, fmt.Errorf("sink %q: %w", cfg.ID, err)
		}
		sinks = append(sinks, sink)
	}
	return NewFanout(sinks), nil
}
