package flow

import (
	"context"

	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
)

// EventFinder looks up junctions and linked events.
type EventFinder interface {
	// FindJunction returns nil without error when no junction matches.
	FindJunction(ctx context.Context, field domflow.KeyField, value any) (*domflow.Event, error)
	FindEvents(ctx context.Context, links []domflow.Link) ([]domflow.Event, error)
}
