package entities

import (
	"time"
)

// UrgencyLevel is the coarse severity classification assigned during triage
type UrgencyLevel string

const (
	UrgencyEmergency UrgencyLevel = "EMERGENCY"
	UrgencyUrgent    UrgencyLevel = "URGENT"
	UrgencyRoutine   UrgencyLevel = "ROUTINE"
	UrgencySelfCare  UrgencyLevel = "SELF_CARE"
)

// QueuePriority maps an urgency level to its validation-queue priority.
// Unknown levels fall back to the routine priority.
func (u UrgencyLevel) QueuePriority() int {
	switch u {
	case UrgencyEmergency:
		return 100
	case UrgencyUrgent:
		return 75
	case UrgencyRoutine:
		return 50
	case UrgencySelfCare:
		return 25
	default:
		return 50
	}
}

// Episode represents one patient's symptom-reporting session tracked through
// triage and supervisor validation
type Episode struct {
	ID           string        `json:"id" db:"id"`
	PatientID    string        `json:"patient_id" db:"patient_id"`
	UrgencyLevel UrgencyLevel  `json:"urgency_level" db:"urgency_level"`
	Symptoms     Symptoms      `json:"symptoms" db:"-"`
	AIAssessment *AIAssessment `json:"ai_assessment,omitempty" db:"-"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Symptoms holds the patient-reported complaint captured during intake
type Symptoms struct {
	PrimaryComplaint string `json:"primary_complaint" db:"primary_complaint"`
	Severity         int    `json:"severity" db:"severity"`
}

// AIAssessment is the automated pre-assessment attached to an episode before
// it reaches a human supervisor
type AIAssessment struct {
	SuggestedUrgency UrgencyLevel `json:"suggested_urgency"`
	Confidence       float64      `json:"confidence"`
	Summary          string       `json:"summary,omitempty"`
}
