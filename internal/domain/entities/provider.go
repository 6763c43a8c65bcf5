package entities

import "time"

// Provider represents a care provider eligible to receive routed episodes
type Provider struct {
	ID             string         `json:"id" db:"id"`
	Name           string         `json:"name" db:"name"`
	IsActive       bool           `json:"is_active" db:"is_active"`
	Specialties    []string       `json:"specialties" db:"-"`
	Languages      []string       `json:"languages" db:"-"`
	Insurance      []string       `json:"accepted_insurance" db:"-"`
	Capacity       ProviderCapacity `json:"capacity" db:"-"`
	QualityMetrics QualityMetrics `json:"quality_metrics" db:"-"`
	CostStructure  CostStructure  `json:"cost_structure" db:"-"`
	Address        Address        `json:"address" db:"-"`
	Location       Location       `json:"location" db:"-"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// ProviderCapacity is the stored intake state for a provider. CurrentLoad is a
// 0-100 percentage of total intake ability.
type ProviderCapacity struct {
	TotalBeds            int       `json:"total_beds" db:"total_beds"`
	AvailableBeds        int       `json:"available_beds" db:"available_beds"`
	CurrentLoad          int       `json:"current_load" db:"current_load"`
	DailyPatientCapacity int       `json:"daily_patient_capacity" db:"daily_patient_capacity"`
	AverageWaitMinutes   int       `json:"average_wait_minutes" db:"average_wait_minutes"`
	LastUpdated          time.Time `json:"last_updated" db:"capacity_updated_at"`
}

// QualityMetrics holds provider quality signals used in ranking
type QualityMetrics struct {
	Rating      float64 `json:"rating" db:"rating"`
	ReviewCount int     `json:"review_count" db:"review_count"`
}

// CostStructure holds provider pricing used for cost-fit scoring
type CostStructure struct {
	ConsultationFee float64 `json:"consultation_fee" db:"consultation_fee"`
	Currency        string  `json:"currency" db:"currency"`
}

// Address represents a physical address
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"zip_code" db:"zip_code"`
	Country string `json:"country" db:"country"`
}

// Location represents geographical coordinates
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}
