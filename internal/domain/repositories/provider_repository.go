package repositories

import (
	"context"
	"time"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
)

// MaxBatchSize is the hard item-count ceiling for a single batch read.
// Callers with larger key sets must chunk their input.
const MaxBatchSize = 100

// CapacityPatch is the capacity state written by a conditional update
type CapacityPatch struct {
	CurrentLoad   int
	AvailableBeds *int
	UpdatedAt     time.Time
}

// ProviderRepository defines storage operations for providers and their
// capacity state
type ProviderRepository interface {
	// GetByID retrieves a provider by ID, nil if absent
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// BatchGetByIDs retrieves up to MaxBatchSize providers in one read.
	// Absent IDs are skipped; result order is unspecified.
	BatchGetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error)

	// UpdateCapacity applies a capacity patch conditional on the provider row
	// already existing; returns a not-found error when the precondition fails
	UpdateCapacity(ctx context.Context, id string, patch CapacityPatch) error

	// QueryByMinLoad returns active providers with current_load >= threshold,
	// backed by the load index
	QueryByMinLoad(ctx context.Context, threshold int) ([]*entities.Provider, error)

	// ScanActive returns all active providers
	ScanActive(ctx context.Context) ([]*entities.Provider, error)
}
