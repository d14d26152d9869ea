package ports

import (
	"context"

	"github.com/vncsmyrnk/weeklypoll/internal/core/domain"
)

// Deduplicator remembers event IDs for a while. Seen records id and reports
// whether it had been recorded before.
type Deduplicator interface {
	Seen(ctx context.Context, id string) (bool, error)
}

// DispatchMetrics records dispatcher outcomes.
type DispatchMetrics interface {
	ObserveEvent(kind string, outcome string)
}

type Dispatcher interface {
	Handle(ctx context.Context, event domain.Event) error
}
