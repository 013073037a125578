package events

import "context"

// NoopPublisher discards events. Used when no broker is configured and
// in tests that do not assert on events.
type NoopPublisher struct{}

var _ Publisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, string, OrderEvent) error { return nil }

func (NoopPublisher) Close() {}
