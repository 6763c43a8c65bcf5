package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/obikoya/care-triage-routing/internal/domain/entities"
	"github.com/obikoya/care-triage-routing/internal/domain/repositories"
	"github.com/obikoya/care-triage-routing/internal/infrastructure/clients/postgres"
	apperrors "github.com/obikoya/care-triage-routing/pkg/errors"
)

var providerColumns = []interface{}{
	"id", "name", "is_active", "specialties", "languages", "accepted_insurance",
	"total_beds", "available_beds", "current_load", "daily_patient_capacity",
	"average_wait_minutes", "capacity_updated_at",
	"rating", "review_count", "consultation_fee", "currency",
	"street", "city", "state", "zip_code", "country",
	"latitude", "longitude", "created_at", "updated_at",
}

// ProviderAdapter implements the ProviderRepository interface
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a provider by ID
func (a *ProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build provider query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	provider, err := scanProvider(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}
	return provider, nil
}

// BatchGetByIDs retrieves up to MaxBatchSize providers in one query. Absent
// IDs are skipped.
func (a *ProviderAdapter) BatchGetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if len(ids) == 0 {
		return []*entities.Provider{}, nil
	}
	if len(ids) > repositories.MaxBatchSize {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("batch get limited to %d items, got %d", repositories.MaxBatchSize, len(ids)))
	}

	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build batch query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to batch get providers", err)
	}
	defer rows.Close()

	return collectProviders(rows)
}

// UpdateCapacity applies a capacity patch conditional on the provider row
// existing. Zero rows affected means the precondition failed.
func (a *ProviderAdapter) UpdateCapacity(ctx context.Context, id string, patch repositories.CapacityPatch) error {
	record := goqu.Record{
		"current_load":        patch.CurrentLoad,
		"capacity_updated_at": patch.UpdatedAt,
		"updated_at":          patch.UpdatedAt,
	}
	if patch.AvailableBeds != nil {
		record["available_beds"] = *patch.AvailableBeds
	}

	query, args, err := a.db.Update("providers").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build capacity update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update capacity", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("provider %s not found", id))
	}
	return nil
}

// QueryByMinLoad returns active providers at or above the load threshold.
// Served by the (is_active, current_load) index.
func (a *ProviderAdapter) QueryByMinLoad(ctx context.Context, threshold int) ([]*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"is_active": true}, goqu.C("current_load").Gte(threshold)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build load query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query providers by load", err)
	}
	defer rows.Close()

	return collectProviders(rows)
}

// ScanActive returns all active providers
func (a *ProviderAdapter) ScanActive(ctx context.Context) ([]*entities.Provider, error) {
	query, args, err := a.db.Select(providerColumns...).
		From("providers").
		Where(goqu.Ex{"is_active": true}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build scan query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan providers", err)
	}
	defer rows.Close()

	return collectProviders(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProvider(row rowScanner) (*entities.Provider, error) {
	p := &entities.Provider{}
	var specialties, languages, insurance pq.StringArray

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.IsActive,
		&specialties,
		&languages,
		&insurance,
		&p.Capacity.TotalBeds,
		&p.Capacity.AvailableBeds,
		&p.Capacity.CurrentLoad,
		&p.Capacity.DailyPatientCapacity,
		&p.Capacity.AverageWaitMinutes,
		&p.Capacity.LastUpdated,
		&p.QualityMetrics.Rating,
		&p.QualityMetrics.ReviewCount,
		&p.CostStructure.ConsultationFee,
		&p.CostStructure.Currency,
		&p.Address.Street,
		&p.Address.City,
		&p.Address.State,
		&p.Address.ZipCode,
		&p.Address.Country,
		&p.Location.Latitude,
		&p.Location.Longitude,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Specialties = specialties
	p.Languages = languages
	p.Insurance = insurance
	return p, nil
}

func collectProviders(rows *sql.Rows) ([]*entities.Provider, error) {
	providers := []*entities.Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan provider row", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate provider rows", err)
	}
	return providers, nil
}
