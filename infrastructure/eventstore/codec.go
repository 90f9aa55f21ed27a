/*
Package eventstore implements the event-store port: a GORM-backed store for
production, an in-memory store for tests and development, and the
event-sourced order repository built on top of them.
*/
package eventstore

import (
	"fmt"

	"finmarket/domain/shared"
)

// DecodeFunc turns a persisted payload back into its concrete event type.
type DecodeFunc func(payload []byte) (shared.DomainEvent, error)

// Codec maps event names to decoders. Serialization is always JSON; only
// deserialization needs the registry, because the concrete type cannot be
// recovered from the payload alone.
type Codec struct {
	decoders map[string]DecodeFunc
}

// NewCodec builds a codec from one or more decoder maps, typically the
// EventDecoders() of each event-sourced aggregate package.
func NewCodec(decoderMaps ...map[string]func(payload []byte) (shared.DomainEvent, error)) *Codec {
	c := &Codec{decoders: make(map[string]DecodeFunc)}
	for _, m := range decoderMaps {
		for name, decode := range m {
			c.decoders[name] = decode
		}
	}
	return c
}

// Decode reconstructs the event stored under the given name.
func (c *Codec) Decode(name string, payload []byte) (shared.DomainEvent, error) {
	decode, ok := c.decoders[name]
	if !ok {
		return nil, fmt.Errorf("event store: no decoder registered for %q", name)
	}
	event, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("event store: decode %q: %w", name, err)
	}
	return event, nil
}
