package entities

import (
	"time"

	"github.com/google/uuid"
)

// CapacityEventType represents the type of capacity event
type CapacityEventType string

const (
	CapacityEventTypeLoadUpdate CapacityEventType = "load_update"
	CapacityEventTypeBedUpdate  CapacityEventType = "bed_update"
)

// CapacityEvent represents a real-time capacity change for a provider.
// Published after successful capacity writes so cached reads can be evicted.
type CapacityEvent struct {
	ID            string                 `json:"id"`
	ProviderID    string                 `json:"provider_id"`
	EventType     CapacityEventType      `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields"`
}

// NewCapacityEvent creates a new capacity event
func NewCapacityEvent(providerID string, eventType CapacityEventType, changedFields map[string]interface{}) *CapacityEvent {
	return &CapacityEvent{
		ID:            uuid.New().String(),
		ProviderID:    providerID,
		EventType:     eventType,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
	}
}
