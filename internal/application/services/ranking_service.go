package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/observability"
	"github.com/obikoya/care-triage-routing/pkg/geo"
	"github.com/obikoya/care-triage-routing/pkg/utils"
)

// Scoring weights. They sum to 100; criteria absent from a request drop out
// of both the earned and the maximum score, so unconstrained searches are
// never penalized.
const (
	wActive       = 10.0
	wQuality      = 25.0
	wAvailability = 20.0
	wSpecialty    = 15.0
	wCost         = 10.0
	wInsurance    = 10.0
	wLanguage     = 5.0
	wDistance     = 5.0
)

// RankingService scores and orders candidate providers against a search
// request. Stateless; each call is a single-shot pure computation.
type RankingService struct {
	metrics *observability.Metrics
}

// NewRankingService creates a new ranking service
func NewRankingService() *RankingService {
	return &RankingService{}
}

// SetMetrics enables metric recording
func (s *RankingService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// RankProviders scores each candidate against the criteria and returns them
// ordered by match score descending, breaking ties by distance ascending when
// both sides have one.
func (s *RankingService) RankProviders(ctx context.Context, candidates []*entities.Provider, criteria *entities.SearchCriteria) []*entities.RankedResult {
	start := time.Now()
	if criteria == nil {
		criteria = &entities.SearchCriteria{}
	}

	results := make([]*entities.RankedResult, 0, len(candidates))
	for _, provider := range candidates {
		if provider == nil {
			continue
		}
		results = append(results, s.scoreProvider(provider, criteria))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		if results[i].Distance != nil && results[j].Distance != nil {
			return *results[i].Distance < *results[j].Distance
		}
		return false
	})

	if s.metrics != nil {
		observability.RecordRankingDuration(ctx, s.metrics, len(candidates), time.Since(start))
	}
	return results
}

func (s *RankingService) scoreProvider(provider *entities.Provider, criteria *entities.SearchCriteria) *entities.RankedResult {
	breakdown := make(map[string]float64)
	load := provider.Capacity.CurrentLoad

	// Always-evaluated factors
	activeScore := 0.0
	if provider.IsActive {
		activeScore = wActive
	}
	breakdown["active"] = activeScore

	breakdown["quality"] = (provider.QualityMetrics.Rating / 5.0) * wQuality
	breakdown["availability"] = availabilityPoints(load)

	earned := breakdown["active"] + breakdown["quality"] + breakdown["availability"]
	maxPossible := wActive + wQuality + wAvailability

	// Requested-facet factors
	if len(criteria.Specialties) > 0 {
		matched := utils.CountMatches(criteria.Specialties, provider.Specialties)
		breakdown["specialty"] = wSpecialty * float64(matched) / float64(len(criteria.Specialties))
		earned += breakdown["specialty"]
		maxPossible += wSpecialty
	}

	if criteria.MaxCost != nil && *criteria.MaxCost > 0 {
		fee := provider.CostStructure.ConsultationFee
		costScore := 0.0
		if fee <= *criteria.MaxCost {
			costScore = wCost * (1.0 - fee / *criteria.MaxCost)
		}
		breakdown["cost"] = costScore
		earned += costScore
		maxPossible += wCost
	}

	if len(criteria.AcceptsInsurance) > 0 {
		matched := utils.CountMatches(criteria.AcceptsInsurance, provider.Insurance)
		breakdown["insurance"] = wInsurance * float64(matched) / float64(len(criteria.AcceptsInsurance))
		earned += breakdown["insurance"]
		maxPossible += wInsurance
	}

	if len(criteria.Languages) > 0 {
		matched := utils.CountMatches(criteria.Languages, provider.Languages)
		breakdown["language"] = wLanguage * float64(matched) / float64(len(criteria.Languages))
		earned += breakdown["language"]
		maxPossible += wLanguage
	}

	var distance *float64
	if criteria.Location != nil {
		d := geo.Distance(
			criteria.Location.Coordinates.Latitude,
			criteria.Location.Coordinates.Longitude,
			provider.Location.Latitude,
			provider.Location.Longitude,
		)
		distance = &d

		if criteria.Location.MaxDistance > 0 {
			breakdown["distance"] = math.Max(0, wDistance-(d/criteria.Location.MaxDistance)*wDistance)
			earned += breakdown["distance"]
			maxPossible += wDistance
		}
	}

	matchScore := int(math.Round(earned / maxPossible * 100))
	if matchScore < 0 {
		matchScore = 0
	}
	if matchScore > 100 {
		matchScore = 100
	}

	return &entities.RankedResult{
		Provider:           provider,
		MatchScore:         matchScore,
		AvailabilityStatus: entities.ProviderAvailability(provider.IsActive, load),
		Distance:           distance,
		EstimatedWaitTime:  estimatedWait(provider),
		ScoreBreakdown:     breakdown,
	}
}

// availabilityPoints bands the current load into availability credit
func availabilityPoints(load int) float64 {
	switch {
	case load < 50:
		return 20
	case load < 70:
		return 15
	case load < 85:
		return 10
	case load < entities.UnavailableLoadThreshold:
		return 5
	default:
		return 0
	}
}

// estimatedWait projects a wait time from the provider's average, scaled by
// load pressure. No estimate is given for inactive or saturated providers.
func estimatedWait(provider *entities.Provider) *time.Duration {
	load := provider.Capacity.CurrentLoad
	if !provider.IsActive || load >= entities.UnavailableLoadThreshold {
		return nil
	}

	multiplier := 1.0
	switch {
	case load >= 85:
		multiplier = 2.0
	case load >= entities.BusyLoadThreshold:
		multiplier = 1.5
	case load >= 50:
		multiplier = 1.2
	}

	wait := time.Duration(float64(provider.Capacity.AverageWaitMinutes)*multiplier) * time.Minute
	return &wait
}
