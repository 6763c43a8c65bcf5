package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
)

func TestAvailabilityFromLoad_Bands(t *testing.T) {
	tests := []struct {
		load     int
		expected entities.AvailabilityStatus
	}{
		{0, entities.AvailabilityAvailable},
		{50, entities.AvailabilityAvailable},
		{69, entities.AvailabilityAvailable},
		{70, entities.AvailabilityBusy},
		{85, entities.AvailabilityBusy},
		{94, entities.AvailabilityBusy},
		{95, entities.AvailabilityUnavailable},
		{100, entities.AvailabilityUnavailable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, entities.AvailabilityFromLoad(tt.load), "load %d", tt.load)
	}
}

func TestProviderAvailability_InactiveAlwaysUnavailable(t *testing.T) {
	assert.Equal(t, entities.AvailabilityUnavailable, entities.ProviderAvailability(false, 0))
	assert.Equal(t, entities.AvailabilityUnavailable, entities.ProviderAvailability(false, 50))
	assert.Equal(t, entities.AvailabilityAvailable, entities.ProviderAvailability(true, 50))
}

func TestCapacityInfoFor_DerivesStatusFromState(t *testing.T) {
	updated := time.Now()
	provider := &entities.Provider{
		ID:       "prov-1",
		IsActive: true,
		Capacity: entities.ProviderCapacity{
			TotalBeds:            120,
			AvailableBeds:        12,
			CurrentLoad:          72,
			DailyPatientCapacity: 300,
			LastUpdated:          updated,
		},
	}

	info := entities.CapacityInfoFor(provider)

	assert.Equal(t, "prov-1", info.ProviderID)
	assert.Equal(t, 120, info.TotalBeds)
	assert.Equal(t, 12, info.AvailableBeds)
	assert.Equal(t, 72, info.CurrentLoad)
	assert.Equal(t, entities.AvailabilityBusy, info.AvailabilityStatus)
	assert.Equal(t, updated, info.LastUpdated)

	provider.IsActive = false
	assert.Equal(t, entities.AvailabilityUnavailable, entities.CapacityInfoFor(provider).AvailabilityStatus)
}
