package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obikoya/care-triage-routing/internal/api/handlers"
	"github.com/obikoya/care-triage-routing/internal/application/services"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/pkg/config"
)

type mockQueueRepo struct {
	mock.Mock
}

func (m *mockQueueRepo) Get(ctx context.Context, episodeID string) (*entities.QueueItem, error) {
	args := m.Called(ctx, episodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QueueItem), args.Error(1)
}

func (m *mockQueueRepo) Upsert(ctx context.Context, item *entities.QueueItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockQueueRepo) UpdateFields(ctx context.Context, episodeID string, patch repositories.QueuePatch) error {
	args := m.Called(ctx, episodeID, patch)
	return args.Error(0)
}

func (m *mockQueueRepo) QueryPending(ctx context.Context, filter repositories.PendingFilter) ([]*entities.QueueItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.QueueItem), args.Error(1)
}

func newQueueHandler(repo repositories.QueueRepository) *handlers.QueueHandler {
	return handlers.NewQueueHandler(services.NewValidationQueueService(repo, config.QueueConfig{}))
}

func TestQueueHandler_Enqueue(t *testing.T) {
	repo := new(mockQueueRepo)
	handler := newQueueHandler(repo)

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(item *entities.QueueItem) bool {
		return item.EpisodeID == "ep-1" && item.Priority == 100
	})).Return(nil)

	body := `{"episode":{"id":"ep-1","patient_id":"pat-1","urgency_level":"EMERGENCY"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/queue", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.Enqueue(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var item entities.QueueItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&item))
	assert.Equal(t, "ep-1", item.EpisodeID)
	assert.Equal(t, 100, item.Priority)
	assert.Equal(t, entities.QueueStatusPending, item.Status)

	repo.AssertExpectations(t)
}

func TestQueueHandler_Enqueue_InvalidPayload(t *testing.T) {
	handler := newQueueHandler(new(mockQueueRepo))

	req := httptest.NewRequest(http.MethodPost, "/api/queue", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	handler.Enqueue(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueHandler_Enqueue_MissingEpisodeID(t *testing.T) {
	handler := newQueueHandler(new(mockQueueRepo))

	req := httptest.NewRequest(http.MethodPost, "/api/queue", strings.NewReader(`{"episode":{}}`))
	w := httptest.NewRecorder()

	handler.Enqueue(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueHandler_Dequeue(t *testing.T) {
	repo := new(mockQueueRepo)
	handler := newQueueHandler(repo)

	repo.On("UpdateFields", mock.Anything, "ep-1", mock.MatchedBy(func(patch repositories.QueuePatch) bool {
		return patch.Status != nil && *patch.Status == entities.QueueStatusCompleted && patch.ClearQueueFields
	})).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/queue/ep-1", nil)
	req.SetPathValue("episodeId", "ep-1")
	w := httptest.NewRecorder()

	handler.Dequeue(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestQueueHandler_GetQueue(t *testing.T) {
	repo := new(mockQueueRepo)
	handler := newQueueHandler(repo)

	base := time.Now()
	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		{EpisodeID: "routine", UrgencyLevel: entities.UrgencyRoutine, Priority: 50, QueuedAt: base},
		{EpisodeID: "emergency", UrgencyLevel: entities.UrgencyEmergency, Priority: 100, QueuedAt: base},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/queue", nil)
	w := httptest.NewRecorder()

	handler.GetQueue(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Items []*entities.QueueItem `json:"items"`
		Count int                   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, 2, response.Count)
	assert.Equal(t, "emergency", response.Items[0].EpisodeID)
}

func TestQueueHandler_GetQueue_InvalidLimit(t *testing.T) {
	handler := newQueueHandler(new(mockQueueRepo))

	req := httptest.NewRequest(http.MethodGet, "/api/queue?limit=abc", nil)
	w := httptest.NewRecorder()

	handler.GetQueue(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueHandler_GetPosition(t *testing.T) {
	repo := new(mockQueueRepo)
	handler := newQueueHandler(repo)

	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		{EpisodeID: "ep-1", UrgencyLevel: entities.UrgencyUrgent, Priority: 75, QueuedAt: time.Now()},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/queue/ep-1/position", nil)
	req.SetPathValue("episodeId", "ep-1")
	w := httptest.NewRecorder()

	handler.GetPosition(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]int
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 1, response["position"])
}

func TestQueueHandler_Reassign(t *testing.T) {
	repo := new(mockQueueRepo)
	handler := newQueueHandler(repo)

	repo.On("UpdateFields", mock.Anything, "ep-1", mock.MatchedBy(func(patch repositories.QueuePatch) bool {
		return patch.AssignedSupervisor != nil && *patch.AssignedSupervisor == "sup-2"
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/queue/ep-1/supervisor", strings.NewReader(`{"supervisor_id":"sup-2"}`))
	req.SetPathValue("episodeId", "ep-1")
	w := httptest.NewRecorder()

	handler.Reassign(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestQueueHandler_GetStatistics(t *testing.T) {
	repo := new(mockQueueRepo)
	handler := newQueueHandler(repo)

	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		{EpisodeID: "e-1", UrgencyLevel: entities.UrgencyEmergency, Priority: 100, QueuedAt: time.Now()},
		{EpisodeID: "r-1", UrgencyLevel: entities.UrgencyRoutine, Priority: 50, QueuedAt: time.Now()},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/queue/statistics", nil)
	w := httptest.NewRecorder()

	handler.GetStatistics(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats entities.QueueStatistics
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Emergency)
	assert.Equal(t, 1, stats.Routine)
}
