package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// TransmissionRepository implements port.TransmissionRepository
type TransmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTransmissionRepository creates a new transmission repository
func NewTransmissionRepository(db *sql.DB, logger *zap.Logger) port.TransmissionRepository {
	return &TransmissionRepository{
		db:     db,
		logger: logger,
	}
}

const transmissionColumns = `
	id, uuid, tax_year, sequence_number, filename, transmission_type, status,
	provider_name, provider_neq, provider_address, provider_city,
	provider_province, provider_postal_code, provider_preparer_number,
	slip_count, total_days, total_box11, total_box12, total_box13, total_box14,
	validation_clean, created_at, updated_at
`

// Create inserts the transmission row. The UNIQUE(tax_year, sequence_number)
// constraint is the serialization point for sequence allocation: the loser
// of a concurrent allocation gets port.ErrSequenceConflict.
func (r *TransmissionRepository) Create(ctx context.Context, tr *entity.Transmission) error {
	query := `
		INSERT INTO transmissions (
			uuid, tax_year, sequence_number, filename, transmission_type, status,
			provider_name, provider_neq, provider_address, provider_city,
			provider_province, provider_postal_code, provider_preparer_number,
			slip_count, total_days, total_box11, total_box12, total_box13, total_box14,
			validation_clean
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		tr.UUID,
		tr.TaxYear,
		tr.SequenceNumber,
		tr.Filename,
		string(tr.TransmissionType),
		tr.Status,
		tr.Provider.Name,
		tr.Provider.NEQ,
		tr.Provider.AddressLine,
		tr.Provider.City,
		tr.Provider.Province,
		tr.Provider.PostalCode,
		tr.Provider.PreparerNumber,
		tr.SlipCount,
		tr.TotalDays,
		tr.TotalBox11,
		tr.TotalBox12,
		tr.TotalBox13,
		tr.TotalBox14,
		tr.ValidationClean,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Sequence number conflict on transmission insert",
				zap.Int("tax_year", tr.TaxYear),
				zap.Int("sequence", tr.SequenceNumber))
			return port.ErrSequenceConflict
		}
		r.logger.Error("Failed to create transmission", zap.Error(err))
		return fmt.Errorf("failed to create transmission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	tr.ID = id
	return nil
}

// GetByID retrieves a transmission by ID
func (r *TransmissionRepository) GetByID(ctx context.Context, id int64) (*entity.Transmission, error) {
	query := `SELECT ` + transmissionColumns + ` FROM transmissions WHERE id = ?`
	return r.get(ctx, query, id)
}

// GetByUUID retrieves a transmission by its external reference
func (r *TransmissionRepository) GetByUUID(ctx context.Context, uuid string) (*entity.Transmission, error) {
	query := `SELECT ` + transmissionColumns + ` FROM transmissions WHERE uuid = ?`
	return r.get(ctx, query, uuid)
}

func (r *TransmissionRepository) get(ctx context.Context, query string, arg interface{}) (*entity.Transmission, error) {
	tr, err := scanTransmission(getExecutor(ctx, r.db).QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get transmission", zap.Error(err))
		return nil, fmt.Errorf("failed to get transmission: %w", err)
	}
	return tr, nil
}

// ListByTaxYear retrieves the transmissions for a tax year, oldest first
func (r *TransmissionRepository) ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.Transmission, error) {
	query := `SELECT ` + transmissionColumns + ` FROM transmissions WHERE tax_year = ? ORDER BY sequence_number`
	return r.list(ctx, query, taxYear)
}

// List retrieves transmissions newest first
func (r *TransmissionRepository) List(ctx context.Context, limit, offset int) ([]*entity.Transmission, error) {
	query := `SELECT ` + transmissionColumns + ` FROM transmissions ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.list(ctx, query, limit, offset)
}

func (r *TransmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Transmission, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transmissions", zap.Error(err))
		return nil, fmt.Errorf("failed to list transmissions: %w", err)
	}
	defer rows.Close()

	var transmissions []*entity.Transmission
	for rows.Next() {
		tr, err := scanTransmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transmission: %w", err)
		}
		transmissions = append(transmissions, tr)
	}

	return transmissions, rows.Err()
}

// NextSequenceNumber returns max(sequence)+1 for the tax year, starting
// at 1. It is advisory; Create resolves races.
func (r *TransmissionRepository) NextSequenceNumber(ctx context.Context, taxYear int) (int, error) {
	query := `SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM transmissions WHERE tax_year = ?`

	var next int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, taxYear).Scan(&next); err != nil {
		r.logger.Error("Failed to compute next sequence number", zap.Int("tax_year", taxYear), zap.Error(err))
		return 0, fmt.Errorf("failed to compute next sequence number: %w", err)
	}

	return next, nil
}

// UpdateStatus moves a transmission through its lifecycle
func (r *TransmissionRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE transmissions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update transmission status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update transmission status: %w", err)
	}

	return requireRow(result)
}

// SetValidationClean records the outcome of the last validation pass
func (r *TransmissionRepository) SetValidationClean(ctx context.Context, id int64, clean bool) error {
	query := `UPDATE transmissions SET validation_clean = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, clean, id)
	if err != nil {
		r.logger.Error("Failed to update validation outcome", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update validation outcome: %w", err)
	}

	return requireRow(result)
}

func scanTransmission(row scanner) (*entity.Transmission, error) {
	var tr entity.Transmission
	var transmissionType string

	err := row.Scan(
		&tr.ID,
		&tr.UUID,
		&tr.TaxYear,
		&tr.SequenceNumber,
		&tr.Filename,
		&transmissionType,
		&tr.Status,
		&tr.Provider.Name,
		&tr.Provider.NEQ,
		&tr.Provider.AddressLine,
		&tr.Provider.City,
		&tr.Provider.Province,
		&tr.Provider.PostalCode,
		&tr.Provider.PreparerNumber,
		&tr.SlipCount,
		&tr.TotalDays,
		&tr.TotalBox11,
		&tr.TotalBox12,
		&tr.TotalBox13,
		&tr.TotalBox14,
		&tr.ValidationClean,
		&tr.CreatedAt,
		&tr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tr.TransmissionType = entity.TransmissionType(transmissionType)
	return &tr, nil
}

// isUniqueViolation detects a sqlite UNIQUE constraint failure without
// binding to driver error types
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Verify interface compliance
var _ port.TransmissionRepository = (*TransmissionRepository)(nil)
