package routes

import (
	"net/http"

	"github.com/obikoya/care-triage-routing/internal/api/handlers"
	"github.com/obikoya/care-triage-routing/internal/api/middleware"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	queueHandler    *handlers.QueueHandler
	capacityHandler *handlers.CapacityHandler
	rankingHandler  *handlers.RankingHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	queueHandler *handlers.QueueHandler,
	capacityHandler *handlers.CapacityHandler,
	rankingHandler *handlers.RankingHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		queueHandler:    queueHandler,
		capacityHandler: capacityHandler,
		rankingHandler:  rankingHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Validation queue endpoints
	r.mux.HandleFunc("POST /api/queue", r.queueHandler.Enqueue)
	r.mux.HandleFunc("GET /api/queue", r.queueHandler.GetQueue)
	r.mux.HandleFunc("GET /api/queue/statistics", r.queueHandler.GetStatistics)
	r.mux.HandleFunc("GET /api/queue/overdue", r.queueHandler.GetOverdue)
	r.mux.HandleFunc("DELETE /api/queue/{episodeId}", r.queueHandler.Dequeue)
	r.mux.HandleFunc("GET /api/queue/{episodeId}/position", r.queueHandler.GetPosition)
	r.mux.HandleFunc("GET /api/queue/{episodeId}/wait-time", r.queueHandler.GetWaitTime)
	r.mux.HandleFunc("PATCH /api/queue/{episodeId}/supervisor", r.queueHandler.Reassign)

	// Provider capacity endpoints
	r.mux.HandleFunc("PUT /api/providers/{id}/capacity", r.capacityHandler.UpdateCapacity)
	r.mux.HandleFunc("GET /api/providers/{id}/capacity", r.capacityHandler.GetProviderCapacity)
	r.mux.HandleFunc("POST /api/providers/capacity/check", r.capacityHandler.CheckCapacity)
	r.mux.HandleFunc("POST /api/providers/capacity/batch", r.capacityHandler.BatchUpdateCapacity)
	r.mux.HandleFunc("GET /api/providers/capacity/statistics", r.capacityHandler.GetStatistics)
	r.mux.HandleFunc("GET /api/providers/low-capacity", r.capacityHandler.GetLowCapacity)

	// Ranking endpoint
	r.mux.HandleFunc("POST /api/providers/rank", r.rankingHandler.RankProviders)

	// Apply middleware
	var handler http.Handler = r.mux
	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)

	return handler
}
