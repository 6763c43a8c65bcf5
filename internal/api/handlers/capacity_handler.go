package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/obikoya/care-triage-routing/internal/application/services"
)

// CapacityHandler exposes the provider capacity operations
type CapacityHandler struct {
	service *services.CapacityService
}

// NewCapacityHandler creates a new capacity handler
func NewCapacityHandler(service *services.CapacityService) *CapacityHandler {
	return &CapacityHandler{service: service}
}

type updateCapacityRequest struct {
	CurrentLoad   int  `json:"current_load"`
	AvailableBeds *int `json:"available_beds,omitempty"`
}

// UpdateCapacity handles PUT /api/providers/{id}/capacity
func (h *CapacityHandler) UpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var payload updateCapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	providerID := r.PathValue("id")
	if err := h.service.UpdateCapacity(r.Context(), providerID, payload.CurrentLoad, payload.AvailableBeds); err != nil {
		respondWithAppError(w, err)
		return
	}

	info, err := h.service.GetProviderCapacity(r.Context(), providerID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

type checkCapacityRequest struct {
	ProviderIDs []string `json:"provider_ids"`
}

// CheckCapacity handles POST /api/providers/capacity/check
func (h *CapacityHandler) CheckCapacity(w http.ResponseWriter, r *http.Request) {
	var payload checkCapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	infos, err := h.service.CheckCapacity(r.Context(), payload.ProviderIDs)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"capacities": infos,
		"count":      len(infos),
	})
}

// GetProviderCapacity handles GET /api/providers/{id}/capacity
func (h *CapacityHandler) GetProviderCapacity(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetProviderCapacity(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if info == nil {
		respondWithError(w, http.StatusNotFound, "provider not found")
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

type batchUpdateRequest struct {
	Updates []services.CapacityUpdate `json:"updates"`
}

// BatchUpdateCapacity handles POST /api/providers/capacity/batch
func (h *CapacityHandler) BatchUpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var payload batchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	summary := h.service.BatchUpdateCapacity(r.Context(), payload.Updates)
	respondWithJSON(w, http.StatusOK, summary)
}

// GetLowCapacity handles GET /api/providers/low-capacity
func (h *CapacityHandler) GetLowCapacity(w http.ResponseWriter, r *http.Request) {
	threshold := 0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "threshold must be an integer")
			return
		}
		threshold = parsed
	}

	infos, err := h.service.GetProvidersWithLowCapacity(r.Context(), threshold)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"providers": infos,
		"count":     len(infos),
	})
}

// GetStatistics handles GET /api/providers/capacity/statistics
func (h *CapacityHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetCapacityStatistics(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
