package pipeline

import "context"

type Storage interface {
	Store(ctx context.Context, events []StoredEvent) error
}

// Deduper remembers delivery IDs it has seen. Seen returns true when the
// ID was already recorded, marking it as a side effect otherwise.
type Deduper interface {
	Seen(ctx context.Context, deliveryID string) (bool, error)
}
