package repositories

import (
	"context"
	"time"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
)

// QueuePatch is a partial update applied to a queued episode. Nil fields are
// left untouched.
type QueuePatch struct {
	Status             *entities.QueueStatus
	AssignedSupervisor *string
	ClearQueueFields   bool
}

// PendingFilter narrows a pending-queue query. Ordering is not a storage
// concern; callers sort the returned rows.
type PendingFilter struct {
	SupervisorID string
	QueuedBefore *time.Time
}

// QueueRepository defines storage operations for the validation queue
type QueueRepository interface {
	// Get retrieves a queue item by episode ID, nil if absent
	Get(ctx context.Context, episodeID string) (*entities.QueueItem, error)

	// Upsert writes a queue item keyed by episode ID, replacing any prior
	// queue state for that episode
	Upsert(ctx context.Context, item *entities.QueueItem) error

	// UpdateFields applies a partial update to a queue item. Updating an
	// episode that was never queued is not an error.
	UpdateFields(ctx context.Context, episodeID string, patch QueuePatch) error

	// QueryPending returns pending queue items matching the filter, in no
	// particular order
	QueryPending(ctx context.Context, filter PendingFilter) ([]*entities.QueueItem, error)
}
