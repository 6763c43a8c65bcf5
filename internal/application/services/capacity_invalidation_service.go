package services

import (
	"context"
	"fmt"
	"time"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/providers"
	"github.com/rs/zerolog/log"
)

// CapacityInvalidationService evicts cached provider entries when capacity
// events arrive from other instances. Local writes invalidate directly; this
// service covers writes made elsewhere.
type CapacityInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCapacityInvalidationService creates a new capacity invalidation service
func NewCapacityInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CapacityInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CapacityInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for capacity events
func (s *CapacityInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelCapacityUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to capacity updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("Capacity invalidation service started")
	return nil
}

// Stop stops the capacity invalidation service
func (s *CapacityInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("Capacity invalidation service stopped")
}

func (s *CapacityInvalidationService) processEvents(eventChan <-chan *entities.CapacityEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CapacityInvalidationService) handleEvent(event *entities.CapacityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidateProviderCache(ctx, event.ProviderID); err != nil {
		log.Warn().Err(err).
			Str("event_id", event.ID).
			Str("provider_id", event.ProviderID).
			Msg("Failed to invalidate provider cache")
	}
}

// InvalidateProviderCache evicts the cached record for a specific provider
func (s *CapacityInvalidationService) InvalidateProviderCache(ctx context.Context, providerID string) error {
	pattern := fmt.Sprintf("provider:%s", providerID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate provider cache: %w", err)
	}
	return nil
}
