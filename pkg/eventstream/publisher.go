package eventstream

import "context"

// Publisher delivers release events to a downstream stream.
type Publisher interface {
	// Publish delivers one event. Implementations must be safe for
	// concurrent use.
	Publish(ctx context.Context, event ReleasePlannedEvent) error

	// Close flushes buffered events and releases resources.
	Close() error
}
