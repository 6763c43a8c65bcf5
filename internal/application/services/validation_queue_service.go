package services

import (
	"context"
	"sort"
	"time"

	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/observability"
	"github.com/obikoya/care-triage-routing/pkg/config"
	apperrors "github.com/obikoya/care-triage-routing/pkg/errors"
)

// ValidationQueueService orders and tracks episodes awaiting supervisor
// review. The queue has no persisted ordering structure; ordering is a
// computed view recomputed on every read.
type ValidationQueueService struct {
	repo                  repositories.QueueRepository
	averageValidationTime time.Duration
	overdueThreshold      time.Duration
	defaultLimit          int
	metrics               *observability.Metrics
}

// NewValidationQueueService creates a new validation queue service
func NewValidationQueueService(repo repositories.QueueRepository, cfg config.QueueConfig) *ValidationQueueService {
	avg := cfg.AverageValidationTime
	if avg <= 0 {
		avg = 10 * time.Minute
	}
	overdue := cfg.OverdueThreshold
	if overdue <= 0 {
		overdue = 30 * time.Minute
	}
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = 20
	}
	return &ValidationQueueService{
		repo:                  repo,
		averageValidationTime: avg,
		overdueThreshold:      overdue,
		defaultLimit:          limit,
	}
}

// SetMetrics enables metric recording
func (s *ValidationQueueService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// AddToQueue enqueues an episode for supervisor validation. Re-enqueueing an
// already queued episode overwrites its prior queue state.
func (s *ValidationQueueService) AddToQueue(ctx context.Context, episode *entities.Episode, supervisorID *string) (*entities.QueueItem, error) {
	if episode == nil || episode.ID == "" {
		return nil, apperrors.NewValidationError("episode id is required")
	}

	item := &entities.QueueItem{
		EpisodeID:          episode.ID,
		PatientID:          episode.PatientID,
		UrgencyLevel:       episode.UrgencyLevel,
		Status:             entities.QueueStatusPending,
		AssignedSupervisor: supervisorID,
		Priority:           episode.UrgencyLevel.QueuePriority(),
		QueuedAt:           time.Now(),
		Symptoms:           episode.Symptoms,
		AIAssessment:       episode.AIAssessment,
	}

	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		observability.RecordEnqueue(ctx, s.metrics, string(episode.UrgencyLevel))
	}
	return item, nil
}

// RemoveFromQueue marks an episode's validation as completed and clears its
// queue-only fields. Removing an episode that was never queued is a no-op.
func (s *ValidationQueueService) RemoveFromQueue(ctx context.Context, episodeID string) error {
	if episodeID == "" {
		return apperrors.NewValidationError("episode id is required")
	}

	completed := entities.QueueStatusCompleted
	return s.repo.UpdateFields(ctx, episodeID, repositories.QueuePatch{
		Status:           &completed,
		ClearQueueFields: true,
	})
}

// GetQueue returns the pending queue ordered by priority (desc) then queue
// time (asc), optionally filtered by assigned supervisor and urgency.
func (s *ValidationQueueService) GetQueue(ctx context.Context, supervisorID string, urgencyFilter entities.UrgencyLevel, limit int) ([]*entities.QueueItem, error) {
	items, err := s.repo.QueryPending(ctx, repositories.PendingFilter{SupervisorID: supervisorID})
	if err != nil {
		return nil, err
	}

	if urgencyFilter != "" {
		filtered := items[:0]
		for _, item := range items {
			if item.UrgencyLevel == urgencyFilter {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	sortQueue(items)

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// GetQueuePosition returns the 1-based index of an episode within the full
// sorted pending queue, or -1 when the episode is not pending.
func (s *ValidationQueueService) GetQueuePosition(ctx context.Context, episodeID string) (int, error) {
	items, err := s.repo.QueryPending(ctx, repositories.PendingFilter{})
	if err != nil {
		return -1, err
	}

	sortQueue(items)
	for i, item := range items {
		if item.EpisodeID == episodeID {
			return i + 1, nil
		}
	}
	return -1, nil
}

// GetEstimatedWaitTime projects how long an episode will wait before review,
// based on its queue position and the average validation time. Episodes at
// the head (or not queued) get zero.
func (s *ValidationQueueService) GetEstimatedWaitTime(ctx context.Context, episodeID string) (time.Duration, error) {
	position, err := s.GetQueuePosition(ctx, episodeID)
	if err != nil {
		return 0, err
	}
	if position <= 0 {
		return 0, nil
	}
	return time.Duration(position-1) * s.averageValidationTime, nil
}

// GetOverdueEpisodes returns pending items queued longer ago than the
// threshold. Storage failures degrade to an empty result so monitoring
// dashboards stay non-fatal.
func (s *ValidationQueueService) GetOverdueEpisodes(ctx context.Context, threshold time.Duration) []*entities.QueueItem {
	if threshold <= 0 {
		threshold = s.overdueThreshold
	}

	cutoff := time.Now().Add(-threshold)
	items, err := s.repo.QueryPending(ctx, repositories.PendingFilter{QueuedBefore: &cutoff})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Overdue episode scan failed, returning empty result")
		return []*entities.QueueItem{}
	}

	sortQueue(items)
	return items
}

// ReassignEpisode updates the assigned supervisor only
func (s *ValidationQueueService) ReassignEpisode(ctx context.Context, episodeID, newSupervisorID string) error {
	if episodeID == "" {
		return apperrors.NewValidationError("episode id is required")
	}
	if newSupervisorID == "" {
		return apperrors.NewValidationError("supervisor id is required")
	}

	return s.repo.UpdateFields(ctx, episodeID, repositories.QueuePatch{
		AssignedSupervisor: &newSupervisorID,
	})
}

// GetQueueStatistics counts pending episodes by urgency bucket. The average
// wait time is the configured validation estimate, not a historical figure.
func (s *ValidationQueueService) GetQueueStatistics(ctx context.Context) (*entities.QueueStatistics, error) {
	items, err := s.repo.QueryPending(ctx, repositories.PendingFilter{})
	if err != nil {
		return nil, err
	}

	stats := &entities.QueueStatistics{
		Total:           len(items),
		AverageWaitTime: s.averageValidationTime,
	}
	for _, item := range items {
		switch item.UrgencyLevel {
		case entities.UrgencyEmergency:
			stats.Emergency++
		case entities.UrgencyUrgent:
			stats.Urgent++
		case entities.UrgencySelfCare:
			stats.SelfCare++
		default:
			stats.Routine++
		}
	}
	return stats, nil
}

// sortQueue orders items by priority descending, then queue time ascending
// (FIFO within equal priority). Stable so equal items keep storage order.
func sortQueue(items []*entities.QueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].QueuedAt.Before(items[j].QueuedAt)
	})
}
