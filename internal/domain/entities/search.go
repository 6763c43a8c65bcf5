package entities

import "time"

// SearchCriteria describes a provider search request. Every facet is optional;
// absent facets do not constrain (or penalize) the match.
type SearchCriteria struct {
	Specialties      []string          `json:"specialties,omitempty"`
	Location         *LocationCriteria `json:"location,omitempty"`
	MaxCost          *float64          `json:"max_cost,omitempty"`
	AcceptsInsurance []string          `json:"accepts_insurance,omitempty"`
	Languages        []string          `json:"languages,omitempty"`
}

// LocationCriteria restricts a search around a coordinate
type LocationCriteria struct {
	Coordinates Location `json:"coordinates"`
	MaxDistance float64  `json:"max_distance"`
}

// RankedResult is one scored provider in a ranking response
type RankedResult struct {
	Provider           *Provider          `json:"provider"`
	MatchScore         int                `json:"match_score"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	Distance           *float64           `json:"distance,omitempty"`
	EstimatedWaitTime  *time.Duration     `json:"estimated_wait_time,omitempty"`
	ScoreBreakdown     map[string]float64 `json:"score_breakdown,omitempty"`
}
