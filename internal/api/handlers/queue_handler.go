package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/obikoya/care-triage-routing/internal/application/services"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
)

// QueueHandler exposes the validation queue operations
type QueueHandler struct {
	service *services.ValidationQueueService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(service *services.ValidationQueueService) *QueueHandler {
	return &QueueHandler{service: service}
}

type enqueueRequest struct {
	Episode      entities.Episode `json:"episode"`
	SupervisorID *string          `json:"supervisor_id,omitempty"`
}

// Enqueue handles POST /api/queue
func (h *QueueHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var payload enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	item, err := h.service.AddToQueue(r.Context(), &payload.Episode, payload.SupervisorID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

// Dequeue handles DELETE /api/queue/{episodeId}
func (h *QueueHandler) Dequeue(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveFromQueue(r.Context(), r.PathValue("episodeId")); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

// GetQueue handles GET /api/queue
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	items, err := h.service.GetQueue(
		r.Context(),
		r.URL.Query().Get("supervisor_id"),
		entities.UrgencyLevel(r.URL.Query().Get("urgency")),
		limit,
	)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// GetPosition handles GET /api/queue/{episodeId}/position
func (h *QueueHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	position, err := h.service.GetQueuePosition(r.Context(), r.PathValue("episodeId"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"position": position})
}

// GetWaitTime handles GET /api/queue/{episodeId}/wait-time
func (h *QueueHandler) GetWaitTime(w http.ResponseWriter, r *http.Request) {
	wait, err := h.service.GetEstimatedWaitTime(r.Context(), r.PathValue("episodeId"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"estimated_wait_minutes": int(wait.Minutes()),
	})
}

// GetOverdue handles GET /api/queue/overdue
func (h *QueueHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	var threshold time.Duration
	if raw := r.URL.Query().Get("threshold_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			respondWithError(w, http.StatusBadRequest, "threshold_minutes must be a non-negative integer")
			return
		}
		threshold = time.Duration(minutes) * time.Minute
	}

	items := h.service.GetOverdueEpisodes(r.Context(), threshold)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

type reassignRequest struct {
	SupervisorID string `json:"supervisor_id"`
}

// Reassign handles PATCH /api/queue/{episodeId}/supervisor
func (h *QueueHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var payload reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.ReassignEpisode(r.Context(), r.PathValue("episodeId"), payload.SupervisorID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reassigned"})
}

// GetStatistics handles GET /api/queue/statistics
func (h *QueueHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetQueueStatistics(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
