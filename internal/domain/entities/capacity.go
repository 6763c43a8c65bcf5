package entities

import "time"

// AvailabilityStatus is the derived three-state classification of a provider's
// current intake ability
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityBusy        AvailabilityStatus = "busy"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// Load thresholds for the availability bands. Shared by the capacity and
// ranking services; the classification must never drift between the two.
const (
	BusyLoadThreshold        = 70
	UnavailableLoadThreshold = 95
)

// AvailabilityFromLoad classifies a 0-100 current load into an availability
// band. Pure function, no I/O.
func AvailabilityFromLoad(currentLoad int) AvailabilityStatus {
	switch {
	case currentLoad < BusyLoadThreshold:
		return AvailabilityAvailable
	case currentLoad < UnavailableLoadThreshold:
		return AvailabilityBusy
	default:
		return AvailabilityUnavailable
	}
}

// ProviderAvailability classifies a provider, folding in the active flag:
// inactive providers are always unavailable regardless of load.
func ProviderAvailability(isActive bool, currentLoad int) AvailabilityStatus {
	if !isActive {
		return AvailabilityUnavailable
	}
	return AvailabilityFromLoad(currentLoad)
}

// CapacityInfo is the derived view of a provider's capacity. The availability
// status is recomputed from the stored load on every read and never persisted.
type CapacityInfo struct {
	ProviderID           string             `json:"provider_id"`
	TotalBeds            int                `json:"total_beds"`
	AvailableBeds        int                `json:"available_beds"`
	CurrentLoad          int                `json:"current_load"`
	DailyPatientCapacity int                `json:"daily_patient_capacity"`
	AvailabilityStatus   AvailabilityStatus `json:"availability_status"`
	LastUpdated          time.Time          `json:"last_updated"`
}

// CapacityInfoFor derives the capacity view for a provider
func CapacityInfoFor(p *Provider) *CapacityInfo {
	return &CapacityInfo{
		ProviderID:           p.ID,
		TotalBeds:            p.Capacity.TotalBeds,
		AvailableBeds:        p.Capacity.AvailableBeds,
		CurrentLoad:          p.Capacity.CurrentLoad,
		DailyPatientCapacity: p.Capacity.DailyPatientCapacity,
		AvailabilityStatus:   ProviderAvailability(p.IsActive, p.Capacity.CurrentLoad),
		LastUpdated:          p.Capacity.LastUpdated,
	}
}

// CapacityStatistics aggregates availability across active providers
type CapacityStatistics struct {
	TotalProviders int `json:"total_providers"`
	Available      int `json:"available"`
	Busy           int `json:"busy"`
	Unavailable    int `json:"unavailable"`
	AverageLoad    int `json:"average_load"`
}
