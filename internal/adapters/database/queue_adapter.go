package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/clients/postgres"
	apperrors "github.com/obikoya/care-triage-routing/pkg/errors"
)

var queueColumns = []interface{}{
	"episode_id", "patient_id", "urgency_level", "status",
	"assigned_supervisor", "priority", "queued_at",
	"primary_complaint", "severity",
}

// QueueAdapter implements the QueueRepository interface
type QueueAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewQueueAdapter creates a new validation queue adapter
func NewQueueAdapter(client *postgres.Client) repositories.QueueRepository {
	return &QueueAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Get retrieves a queue item by episode ID
func (a *QueueAdapter) Get(ctx context.Context, episodeID string) (*entities.QueueItem, error) {
	query, args, err := a.db.Select(queueColumns...).
		From("validation_queue").
		Where(goqu.Ex{"episode_id": episodeID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build queue query", err)
	}

	item, err := scanQueueItem(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get queue item", err)
	}
	return item, nil
}

// Upsert writes a queue item keyed by episode ID. Re-enqueueing an episode
// replaces its prior queue state.
func (a *QueueAdapter) Upsert(ctx context.Context, item *entities.QueueItem) error {
	record := goqu.Record{
		"episode_id":          item.EpisodeID,
		"patient_id":          item.PatientID,
		"urgency_level":       item.UrgencyLevel,
		"status":              item.Status,
		"assigned_supervisor": item.AssignedSupervisor,
		"priority":            item.Priority,
		"queued_at":           item.QueuedAt,
		"primary_complaint":   item.Symptoms.PrimaryComplaint,
		"severity":            item.Symptoms.Severity,
	}

	query, args, err := a.db.Insert("validation_queue").
		Rows(record).
		OnConflict(goqu.DoUpdate("episode_id", record)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build queue upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert queue item", err)
	}
	return nil
}

// UpdateFields applies a partial update. An episode that was never queued is
// a no-op, not an error.
func (a *QueueAdapter) UpdateFields(ctx context.Context, episodeID string, patch repositories.QueuePatch) error {
	record := goqu.Record{}
	if patch.Status != nil {
		record["status"] = *patch.Status
	}
	if patch.AssignedSupervisor != nil {
		record["assigned_supervisor"] = *patch.AssignedSupervisor
	}
	if patch.ClearQueueFields {
		record["assigned_supervisor"] = nil
		record["priority"] = 0
	}
	if len(record) == 0 {
		return nil
	}

	query, args, err := a.db.Update("validation_queue").
		Set(record).
		Where(goqu.Ex{"episode_id": episodeID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build queue update", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to update queue item", err)
	}
	return nil
}

// QueryPending returns pending queue items matching the filter, unordered
func (a *QueueAdapter) QueryPending(ctx context.Context, filter repositories.PendingFilter) ([]*entities.QueueItem, error) {
	conditions := []goqu.Expression{goqu.Ex{"status": entities.QueueStatusPending}}
	if filter.SupervisorID != "" {
		conditions = append(conditions, goqu.Ex{"assigned_supervisor": filter.SupervisorID})
	}
	if filter.QueuedBefore != nil {
		conditions = append(conditions, goqu.C("queued_at").Lt(*filter.QueuedBefore))
	}

	query, args, err := a.db.Select(queueColumns...).
		From("validation_queue").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build pending query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query pending queue", err)
	}
	defer rows.Close()

	items := []*entities.QueueItem{}
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan queue row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate queue rows", err)
	}
	return items, nil
}

func scanQueueItem(row rowScanner) (*entities.QueueItem, error) {
	item := &entities.QueueItem{}
	var supervisor sql.NullString

	err := row.Scan(
		&item.EpisodeID,
		&item.PatientID,
		&item.UrgencyLevel,
		&item.Status,
		&supervisor,
		&item.Priority,
		&item.QueuedAt,
		&item.Symptoms.PrimaryComplaint,
		&item.Symptoms.Severity,
	)
	if err != nil {
		return nil, err
	}

	if supervisor.Valid {
		item.AssignedSupervisor = &supervisor.String
	}
	return item, nil
}
