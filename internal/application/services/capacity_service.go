package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/providers"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/observability"
	"github.com/obikoya/care-triage-routing/pkg/config"
	apperrors "github.com/obikoya/care-triage-routing/pkg/errors"
)

// CapacityUpdate is one provider's new capacity state in a batch update
type CapacityUpdate struct {
	ProviderID    string `json:"provider_id"`
	CurrentLoad   int    `json:"current_load"`
	AvailableBeds *int   `json:"available_beds,omitempty"`
}

// BatchUpdateSummary reports the outcome of a batch capacity update
type BatchUpdateSummary struct {
	Processed int               `json:"processed"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// CapacityService is the single source of truth for provider load and
// availability classification
type CapacityService struct {
	repo        repositories.ProviderRepository
	concurrency int
	lowCapacity int
	eventBus    providers.EventBus
	metrics     *observability.Metrics
}

// NewCapacityService creates a new capacity service
func NewCapacityService(repo repositories.ProviderRepository, cfg config.CapacityConfig) *CapacityService {
	concurrency := cfg.BatchUpdateConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	lowCapacity := cfg.LowCapacityThreshold
	if lowCapacity <= 0 {
		lowCapacity = 90
	}
	return &CapacityService{
		repo:        repo,
		concurrency: concurrency,
		lowCapacity: lowCapacity,
	}
}

// SetEventBus enables capacity-change events for cache invalidation
func (s *CapacityService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// SetMetrics enables metric recording
func (s *CapacityService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// UpdateCapacity writes a provider's current load (and optionally available
// beds). Input is validated before any storage access; updating a provider
// that does not exist yields a not-found error.
func (s *CapacityService) UpdateCapacity(ctx context.Context, providerID string, currentLoad int, availableBeds *int) error {
	if providerID == "" {
		return apperrors.NewValidationError("provider id is required")
	}
	if currentLoad < 0 || currentLoad > 100 {
		return apperrors.NewValidationError(fmt.Sprintf("current load must be between 0 and 100, got %d", currentLoad))
	}
	if availableBeds != nil && *availableBeds < 0 {
		return apperrors.NewValidationError("available beds must not be negative")
	}

	err := s.repo.UpdateCapacity(ctx, providerID, repositories.CapacityPatch{
		CurrentLoad:   currentLoad,
		AvailableBeds: availableBeds,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		if s.metrics != nil {
			observability.RecordCapacityUpdate(ctx, s.metrics, "error")
		}
		return err
	}

	if s.metrics != nil {
		observability.RecordCapacityUpdate(ctx, s.metrics, "ok")
	}
	s.publishCapacityEvent(ctx, providerID, currentLoad, availableBeds)
	return nil
}

// CheckCapacity returns the derived capacity view for each known provider in
// the input. Storage batch reads are capped at MaxBatchSize items, so the
// input is chunked transparently; result order across chunks is unspecified.
func (s *CapacityService) CheckCapacity(ctx context.Context, providerIDs []string) ([]*entities.CapacityInfo, error) {
	infos := make([]*entities.CapacityInfo, 0, len(providerIDs))

	for start := 0; start < len(providerIDs); start += repositories.MaxBatchSize {
		end := start + repositories.MaxBatchSize
		if end > len(providerIDs) {
			end = len(providerIDs)
		}

		batch, err := s.repo.BatchGetByIDs(ctx, providerIDs[start:end])
		if err != nil {
			return nil, apperrors.NewInternalError("failed to check provider capacity", err)
		}
		for _, provider := range batch {
			infos = append(infos, entities.CapacityInfoFor(provider))
		}
	}
	return infos, nil
}

// GetProviderCapacity returns the derived capacity view for one provider, or
// nil when the provider does not exist
func (s *CapacityService) GetProviderCapacity(ctx context.Context, providerID string) (*entities.CapacityInfo, error) {
	if providerID == "" {
		return nil, apperrors.NewValidationError("provider id is required")
	}

	provider, err := s.repo.GetByID(ctx, providerID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider capacity", err)
	}
	if provider == nil {
		return nil, nil
	}
	return entities.CapacityInfoFor(provider), nil
}

// BatchUpdateCapacity applies many capacity updates with a fixed in-flight
// limit, overlapping storage latency without overwhelming the store. The call
// returns once every update has settled; per-provider failures are collected
// in the summary rather than aborting the batch.
func (s *CapacityService) BatchUpdateCapacity(ctx context.Context, updates []CapacityUpdate) *BatchUpdateSummary {
	summary := &BatchUpdateSummary{Errors: map[string]string{}}
	if len(updates) == 0 {
		return summary
	}

	var processed, succeeded int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	updateChan := make(chan CapacityUpdate)

	workers := s.concurrency
	if workers > len(updates) {
		workers = len(updates)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range updateChan {
				err := s.UpdateCapacity(ctx, update.ProviderID, update.CurrentLoad, update.AvailableBeds)
				atomic.AddInt64(&processed, 1)
				if err != nil {
					mu.Lock()
					summary.Errors[update.ProviderID] = err.Error()
					mu.Unlock()
				} else {
					atomic.AddInt64(&succeeded, 1)
				}
			}
		}()
	}

	for _, update := range updates {
		updateChan <- update
	}
	close(updateChan)
	wg.Wait()

	summary.Processed = int(processed)
	summary.Succeeded = int(succeeded)
	summary.Failed = summary.Processed - summary.Succeeded
	if len(summary.Errors) == 0 {
		summary.Errors = nil
	}
	return summary
}

// GetProvidersWithLowCapacity returns providers whose load meets or exceeds
// the threshold (default from configuration)
func (s *CapacityService) GetProvidersWithLowCapacity(ctx context.Context, threshold int) ([]*entities.CapacityInfo, error) {
	if threshold <= 0 {
		threshold = s.lowCapacity
	}
	if threshold > 100 {
		return nil, apperrors.NewValidationError("threshold must be at most 100")
	}

	matched, err := s.repo.QueryByMinLoad(ctx, threshold)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query low-capacity providers", err)
	}

	infos := make([]*entities.CapacityInfo, 0, len(matched))
	for _, provider := range matched {
		infos = append(infos, entities.CapacityInfoFor(provider))
	}
	return infos, nil
}

// GetCapacityStatistics scans active providers and partitions them by
// availability band, averaging current load (rounded to nearest integer)
func (s *CapacityService) GetCapacityStatistics(ctx context.Context) (*entities.CapacityStatistics, error) {
	active, err := s.repo.ScanActive(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to compute capacity statistics", err)
	}

	stats := &entities.CapacityStatistics{TotalProviders: len(active)}
	if len(active) == 0 {
		return stats, nil
	}

	loadSum := 0
	for _, provider := range active {
		loadSum += provider.Capacity.CurrentLoad
		switch entities.AvailabilityFromLoad(provider.Capacity.CurrentLoad) {
		case entities.AvailabilityAvailable:
			stats.Available++
		case entities.AvailabilityBusy:
			stats.Busy++
		default:
			stats.Unavailable++
		}
	}
	stats.AverageLoad = int(math.Round(float64(loadSum) / float64(len(active))))
	return stats, nil
}

// DetermineAvailabilityStatus classifies a current load into an availability
// band. Shared with the ranking service through the domain entity.
func (s *CapacityService) DetermineAvailabilityStatus(currentLoad int) entities.AvailabilityStatus {
	return entities.AvailabilityFromLoad(currentLoad)
}

// publishCapacityEvent notifies subscribers of a capacity change. Best
// effort; a publish failure never fails the write.
func (s *CapacityService) publishCapacityEvent(ctx context.Context, providerID string, currentLoad int, availableBeds *int) {
	if s.eventBus == nil {
		return
	}

	changed := map[string]interface{}{"current_load": currentLoad}
	eventType := entities.CapacityEventTypeLoadUpdate
	if availableBeds != nil {
		changed["available_beds"] = *availableBeds
		eventType = entities.CapacityEventTypeBedUpdate
	}

	event := entities.NewCapacityEvent(providerID, eventType, changed)
	if err := s.eventBus.Publish(ctx, providers.EventChannelCapacityUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("provider_id", providerID).
			Msg("Failed to publish capacity event")
	}
}
