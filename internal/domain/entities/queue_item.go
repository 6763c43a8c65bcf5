package entities

import "time"

// QueueStatus tracks an episode's lifecycle in the validation queue
type QueueStatus string

const (
	QueueStatusPending   QueueStatus = "pending"
	QueueStatusCompleted QueueStatus = "completed"
)

// QueueItem is an episode awaiting human-supervisor validation. Queue-only
// fields (QueuedAt, Priority, AssignedSupervisor) are owned exclusively by the
// validation queue service.
type QueueItem struct {
	EpisodeID          string        `json:"episode_id" db:"episode_id"`
	PatientID          string        `json:"patient_id" db:"patient_id"`
	UrgencyLevel       UrgencyLevel  `json:"urgency_level" db:"urgency_level"`
	Status             QueueStatus   `json:"status" db:"status"`
	AssignedSupervisor *string       `json:"assigned_supervisor,omitempty" db:"assigned_supervisor"`
	Priority           int           `json:"priority" db:"priority"`
	QueuedAt           time.Time     `json:"queued_at" db:"queued_at"`
	Symptoms           Symptoms      `json:"symptoms" db:"-"`
	AIAssessment       *AIAssessment `json:"ai_assessment,omitempty" db:"-"`
}

// QueueStatistics summarizes the pending queue by urgency bucket
type QueueStatistics struct {
	Total           int           `json:"total"`
	Emergency       int           `json:"emergency"`
	Urgent          int           `json:"urgent"`
	Routine         int           `json:"routine"`
	SelfCare        int           `json:"self_care"`
	AverageWaitTime time.Duration `json:"average_wait_time"`
}
