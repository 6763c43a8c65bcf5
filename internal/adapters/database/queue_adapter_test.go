package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obikoya/care-triage-routing/internal/adapters/database"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/clients/postgres"
)

var queueTestColumns = []string{
	"episode_id", "patient_id", "urgency_level", "status",
	"assigned_supervisor", "priority", "queued_at",
	"primary_complaint", "severity",
}

func newQueueAdapter(t *testing.T) (repositories.QueueRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewQueueAdapter(postgres.NewClientFromDB(db)), mock
}

func TestQueueAdapter_Get(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	queuedAt := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "validation_queue" WHERE`).
		WillReturnRows(sqlmock.NewRows(queueTestColumns).
			AddRow("ep-1", "pat-1", "EMERGENCY", "pending", "sup-1", 100, queuedAt, "chest pain", 9))

	item, err := adapter.Get(context.Background(), "ep-1")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, "ep-1", item.EpisodeID)
	assert.Equal(t, entities.UrgencyEmergency, item.UrgencyLevel)
	assert.Equal(t, entities.QueueStatusPending, item.Status)
	require.NotNil(t, item.AssignedSupervisor)
	assert.Equal(t, "sup-1", *item.AssignedSupervisor)
	assert.Equal(t, 100, item.Priority)
	assert.Equal(t, "chest pain", item.Symptoms.PrimaryComplaint)
	assert.Equal(t, 9, item.Symptoms.Severity)
}

func TestQueueAdapter_Get_AbsentReturnsNil(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "validation_queue" WHERE`).
		WillReturnRows(sqlmock.NewRows(queueTestColumns))

	item, err := adapter.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestQueueAdapter_Get_NullSupervisor(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "validation_queue" WHERE`).
		WillReturnRows(sqlmock.NewRows(queueTestColumns).
			AddRow("ep-1", "pat-1", "ROUTINE", "pending", nil, 50, time.Now(), "rash", 3))

	item, err := adapter.Get(context.Background(), "ep-1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, item.AssignedSupervisor)
}

func TestQueueAdapter_Upsert(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	mock.ExpectExec(`INSERT INTO "validation_queue" (.+) ON CONFLICT (.+) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Upsert(context.Background(), &entities.QueueItem{
		EpisodeID:    "ep-1",
		PatientID:    "pat-1",
		UrgencyLevel: entities.UrgencyUrgent,
		Status:       entities.QueueStatusPending,
		Priority:     75,
		QueuedAt:     time.Now(),
		Symptoms:     entities.Symptoms{PrimaryComplaint: "fever", Severity: 5},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueAdapter_UpdateFields(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	mock.ExpectExec(`UPDATE "validation_queue" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	completed := entities.QueueStatusCompleted
	err := adapter.UpdateFields(context.Background(), "ep-1", repositories.QueuePatch{
		Status:           &completed,
		ClearQueueFields: true,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueAdapter_UpdateFields_EmptyPatchIsNoOp(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	err := adapter.UpdateFields(context.Background(), "ep-1", repositories.QueuePatch{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueAdapter_QueryPending(t *testing.T) {
	adapter, mock := newQueueAdapter(t)

	queuedAt := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "validation_queue" WHERE (.+)"status"`).
		WillReturnRows(sqlmock.NewRows(queueTestColumns).
			AddRow("ep-1", "pat-1", "EMERGENCY", "pending", nil, 100, queuedAt, "chest pain", 9).
			AddRow("ep-2", "pat-2", "ROUTINE", "pending", "sup-1", 50, queuedAt, "cough", 2))

	items, err := adapter.QueryPending(context.Background(), repositories.PendingFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ep-1", items[0].EpisodeID)
	assert.Equal(t, "ep-2", items[1].EpisodeID)
}
