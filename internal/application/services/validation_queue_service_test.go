package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obikoya/care-triage-routing/internal/application/services"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/pkg/config"
	apperrors "github.com/obikoya/care-triage-routing/pkg/errors"
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

func newQueueService(repo repositories.QueueRepository) *services.ValidationQueueService {
	return services.NewValidationQueueService(repo, config.QueueConfig{
		AverageValidationTime: 10 * time.Minute,
		OverdueThreshold:      30 * time.Minute,
		DefaultLimit:          20,
	})
}

func pendingItem(episodeID string, urgency entities.UrgencyLevel, queuedAt time.Time) *entities.QueueItem {
	return &entities.QueueItem{
		EpisodeID:    episodeID,
		PatientID:    "patient-" + episodeID,
		UrgencyLevel: urgency,
		Status:       entities.QueueStatusPending,
		Priority:     urgency.QueuePriority(),
		QueuedAt:     queuedAt,
	}
}

func TestAddToQueue_SetsPriorityFromUrgency(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	var stored *entities.QueueItem
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*entities.QueueItem")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*entities.QueueItem)
		}).
		Return(nil)

	episode := &entities.Episode{
		ID:           "ep-1",
		PatientID:    "pat-1",
		UrgencyLevel: entities.UrgencyEmergency,
		Symptoms:     entities.Symptoms{PrimaryComplaint: "chest pain", Severity: 9},
	}

	item, err := svc.AddToQueue(context.Background(), episode, nil)
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, "ep-1", stored.EpisodeID)
	assert.Equal(t, "pat-1", stored.PatientID)
	assert.Equal(t, 100, stored.Priority)
	assert.Equal(t, entities.QueueStatusPending, stored.Status)
	assert.Nil(t, stored.AssignedSupervisor)
	assert.False(t, stored.QueuedAt.IsZero())
	assert.Equal(t, "chest pain", stored.Symptoms.PrimaryComplaint)

	repo.AssertExpectations(t)
}

func TestAddToQueue_WithSupervisorAssignment(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	supervisor := "sup-7"
	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(item *entities.QueueItem) bool {
		return item.AssignedSupervisor != nil && *item.AssignedSupervisor == supervisor
	})).Return(nil)

	_, err := svc.AddToQueue(context.Background(), &entities.Episode{
		ID:           "ep-2",
		PatientID:    "pat-2",
		UrgencyLevel: entities.UrgencyRoutine,
	}, &supervisor)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAddToQueue_RejectsMissingEpisode(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	_, err := svc.AddToQueue(context.Background(), nil, nil)
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)

	_, err = svc.AddToQueue(context.Background(), &entities.Episode{}, nil)
	require.Error(t, err)

	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAddToQueue_PropagatesStorageError(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	storageErr := errors.New("connection refused")
	repo.On("Upsert", mock.Anything, mock.Anything).Return(storageErr)

	_, err := svc.AddToQueue(context.Background(), &entities.Episode{ID: "ep-3", UrgencyLevel: entities.UrgencyUrgent}, nil)
	require.ErrorIs(t, err, storageErr)
}

func TestRemoveFromQueue_CompletesAndClearsQueueFields(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	repo.On("UpdateFields", mock.Anything, "ep-1", mock.MatchedBy(func(patch repositories.QueuePatch) bool {
		return patch.Status != nil &&
			*patch.Status == entities.QueueStatusCompleted &&
			patch.ClearQueueFields
	})).Return(nil)

	require.NoError(t, svc.RemoveFromQueue(context.Background(), "ep-1"))
	repo.AssertExpectations(t)
}

func TestRemoveFromQueue_RejectsEmptyID(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	err := svc.RemoveFromQueue(context.Background(), "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetQueue_OrdersByPriorityThenQueueTime(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	base := time.Now()
	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		pendingItem("routine-late", entities.UrgencyRoutine, base.Add(5*time.Minute)),
		pendingItem("urgent", entities.UrgencyUrgent, base.Add(10*time.Minute)),
		pendingItem("emergency-late", entities.UrgencyEmergency, base.Add(2*time.Minute)),
		pendingItem("emergency-early", entities.UrgencyEmergency, base),
		pendingItem("self-care", entities.UrgencySelfCare, base),
	}, nil)

	items, err := svc.GetQueue(context.Background(), "", "", 0)
	require.NoError(t, err)
	require.Len(t, items, 5)

	got := make([]string, len(items))
	for i, item := range items {
		got[i] = item.EpisodeID
	}
	assert.Equal(t, []string{"emergency-early", "emergency-late", "urgent", "routine-late", "self-care"}, got)
}

func TestGetQueue_AppliesUrgencyFilterAndLimit(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	base := time.Now()
	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		pendingItem("u-1", entities.UrgencyUrgent, base),
		pendingItem("r-1", entities.UrgencyRoutine, base),
		pendingItem("u-2", entities.UrgencyUrgent, base.Add(time.Minute)),
		pendingItem("u-3", entities.UrgencyUrgent, base.Add(2*time.Minute)),
	}, nil)

	items, err := svc.GetQueue(context.Background(), "", entities.UrgencyUrgent, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "u-1", items[0].EpisodeID)
	assert.Equal(t, "u-2", items[1].EpisodeID)
}

func TestGetQueue_PassesSupervisorFilterToStorage(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	repo.On("QueryPending", mock.Anything, repositories.PendingFilter{SupervisorID: "sup-1"}).
		Return([]*entities.QueueItem{}, nil)

	_, err := svc.GetQueue(context.Background(), "sup-1", "", 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetQueuePosition(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	base := time.Now()
	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		pendingItem("routine", entities.UrgencyRoutine, base),
		pendingItem("emergency", entities.UrgencyEmergency, base),
	}, nil)

	pos, err := svc.GetQueuePosition(context.Background(), "emergency")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = svc.GetQueuePosition(context.Background(), "routine")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	pos, err = svc.GetQueuePosition(context.Background(), "never-queued")
	require.NoError(t, err)
	assert.Equal(t, -1, pos)
}

func TestGetEstimatedWaitTime(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	base := time.Now()
	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		pendingItem("first", entities.UrgencyEmergency, base),
		pendingItem("second", entities.UrgencyUrgent, base),
		pendingItem("third", entities.UrgencyRoutine, base),
	}, nil)

	wait, err := svc.GetEstimatedWaitTime(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), wait)

	wait, err = svc.GetEstimatedWaitTime(context.Background(), "third")
	require.NoError(t, err)
	assert.Equal(t, 20*time.Minute, wait)

	wait, err = svc.GetEstimatedWaitTime(context.Background(), "absent")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), wait)
}

func TestGetOverdueEpisodes_UsesCutoffFilter(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	overdue := pendingItem("old", entities.UrgencyRoutine, time.Now().Add(-2*time.Hour))
	repo.On("QueryPending", mock.Anything, mock.MatchedBy(func(filter repositories.PendingFilter) bool {
		return filter.QueuedBefore != nil && time.Since(*filter.QueuedBefore) >= 30*time.Minute
	})).Return([]*entities.QueueItem{overdue}, nil)

	items := svc.GetOverdueEpisodes(context.Background(), 0)
	require.Len(t, items, 1)
	assert.Equal(t, "old", items[0].EpisodeID)
}

func TestGetOverdueEpisodes_DegradesToEmptyOnStorageError(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	repo.On("QueryPending", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	items := svc.GetOverdueEpisodes(context.Background(), time.Hour)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestReassignEpisode(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	repo.On("UpdateFields", mock.Anything, "ep-1", mock.MatchedBy(func(patch repositories.QueuePatch) bool {
		return patch.AssignedSupervisor != nil &&
			*patch.AssignedSupervisor == "sup-2" &&
			patch.Status == nil &&
			!patch.ClearQueueFields
	})).Return(nil)

	require.NoError(t, svc.ReassignEpisode(context.Background(), "ep-1", "sup-2"))
	repo.AssertExpectations(t)
}

func TestReassignEpisode_Validation(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	assert.Error(t, svc.ReassignEpisode(context.Background(), "", "sup-2"))
	assert.Error(t, svc.ReassignEpisode(context.Background(), "ep-1", ""))
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetQueueStatistics_BucketsByUrgency(t *testing.T) {
	repo := new(mockQueueRepo)
	svc := newQueueService(repo)

	base := time.Now()
	repo.On("QueryPending", mock.Anything, mock.Anything).Return([]*entities.QueueItem{
		pendingItem("e-1", entities.UrgencyEmergency, base),
		pendingItem("e-2", entities.UrgencyEmergency, base),
		pendingItem("u-1", entities.UrgencyUrgent, base),
		pendingItem("r-1", entities.UrgencyRoutine, base),
		pendingItem("s-1", entities.UrgencySelfCare, base),
	}, nil)

	stats, err := svc.GetQueueStatistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Emergency)
	assert.Equal(t, 1, stats.Urgent)
	assert.Equal(t, 1, stats.Routine)
	assert.Equal(t, 1, stats.SelfCare)
	assert.Equal(t, 10*time.Minute, stats.AverageWaitTime)
}
