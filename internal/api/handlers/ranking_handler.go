package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/obikoya/care-triage-routing/internal/application/services"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
)

// RankingHandler exposes provider ranking. It resolves candidate IDs to
// provider records before handing them to the ranking service, which only
// deals in loaded records.
type RankingHandler struct {
	service      *services.RankingService
	providerRepo repositories.ProviderRepository
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(service *services.RankingService, providerRepo repositories.ProviderRepository) *RankingHandler {
	return &RankingHandler{
		service:      service,
		providerRepo: providerRepo,
	}
}

type rankRequest struct {
	ProviderIDs []string                 `json:"provider_ids"`
	Criteria    *entities.SearchCriteria `json:"criteria,omitempty"`
}

// RankProviders handles POST /api/providers/rank
func (h *RankingHandler) RankProviders(w http.ResponseWriter, r *http.Request) {
	var payload rankRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.ProviderIDs) == 0 {
		respondWithError(w, http.StatusBadRequest, "provider_ids is required")
		return
	}

	candidates := make([]*entities.Provider, 0, len(payload.ProviderIDs))
	for start := 0; start < len(payload.ProviderIDs); start += repositories.MaxBatchSize {
		end := start + repositories.MaxBatchSize
		if end > len(payload.ProviderIDs) {
			end = len(payload.ProviderIDs)
		}
		batch, err := h.providerRepo.BatchGetByIDs(r.Context(), payload.ProviderIDs[start:end])
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		candidates = append(candidates, batch...)
	}

	results := h.service.RankProviders(r.Context(), candidates, payload.Criteria)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
