package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// EligibilityRepository implements port.EligibilityRepository
type EligibilityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEligibilityRepository creates a new eligibility repository
func NewEligibilityRepository(db *sql.DB, logger *zap.Logger) port.EligibilityRepository {
	return &EligibilityRepository{
		db:     db,
		logger: logger,
	}
}

const eligibilityColumns = `
	id, tax_year, child_first_name, child_last_name, child_date_of_birth,
	parent_first_name, parent_last_name, parent_sin,
	address_line, city, province, postal_code, canadian_resident,
	service_start, service_end, days_of_service,
	eligible_fees, fees_paid, fees_reimbursed,
	status, transmission_id, created_at, updated_at
`

// Create inserts a new eligibility record in Pending status unless one is set
func (r *EligibilityRepository) Create(ctx context.Context, rec *entity.EligibilityRecord) error {
	if rec.Status == "" {
		rec.Status = entity.EligibilityPending
	}

	query := `
		INSERT INTO eligibility_records (
			tax_year, child_first_name, child_last_name, child_date_of_birth,
			parent_first_name, parent_last_name, parent_sin,
			address_line, city, province, postal_code, canadian_resident,
			service_start, service_end, days_of_service,
			eligible_fees, fees_paid, fees_reimbursed, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		rec.TaxYear,
		rec.ChildFirstName,
		rec.ChildLastName,
		rec.ChildDateOfBirth,
		rec.ParentFirstName,
		rec.ParentLastName,
		rec.ParentSIN,
		rec.AddressLine,
		rec.City,
		rec.Province,
		rec.PostalCode,
		rec.CanadianResident,
		rec.ServiceStart,
		rec.ServiceEnd,
		rec.DaysOfService,
		rec.EligibleFees,
		rec.FeesPaid,
		rec.FeesReimbursed,
		string(rec.Status),
	)
	if err != nil {
		r.logger.Error("Failed to create eligibility record", zap.Error(err))
		return fmt.Errorf("failed to create eligibility record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// GetByID retrieves an eligibility record by ID
func (r *EligibilityRepository) GetByID(ctx context.Context, id int64) (*entity.EligibilityRecord, error) {
	query := `SELECT ` + eligibilityColumns + ` FROM eligibility_records WHERE id = ?`

	rec, err := scanEligibility(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get eligibility record", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get eligibility record: %w", err)
	}

	return rec, nil
}

// ListByTaxYear retrieves all eligibility records for a tax year
func (r *EligibilityRepository) ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error) {
	query := `SELECT ` + eligibilityColumns + ` FROM eligibility_records WHERE tax_year = ? ORDER BY id`
	return r.list(ctx, query, taxYear)
}

// ListUnslipped retrieves the Approved records for a tax year not yet
// included in any transmission, ordered by id for deterministic batches
func (r *EligibilityRepository) ListUnslipped(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error) {
	query := `SELECT ` + eligibilityColumns + `
		FROM eligibility_records
		WHERE tax_year = ? AND status = 'APPROVED' AND transmission_id IS NULL
		ORDER BY id`
	return r.list(ctx, query, taxYear)
}

func (r *EligibilityRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.EligibilityRecord, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list eligibility records", zap.Error(err))
		return nil, fmt.Errorf("failed to list eligibility records: %w", err)
	}
	defer rows.Close()

	var records []*entity.EligibilityRecord
	for rows.Next() {
		rec, err := scanEligibility(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan eligibility record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// UpdateStatus moves a record through the review lifecycle
func (r *EligibilityRepository) UpdateStatus(ctx context.Context, id int64, status entity.EligibilityStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid eligibility status: %s", status)
	}

	query := `UPDATE eligibility_records SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, string(status), id)
	if err != nil {
		r.logger.Error("Failed to update eligibility status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update eligibility status: %w", err)
	}

	return requireRow(result)
}

// MarkSlipped records the transmission that includes the record
func (r *EligibilityRepository) MarkSlipped(ctx context.Context, id int64, transmissionID int64) error {
	query := `UPDATE eligibility_records SET transmission_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, transmissionID, id)
	if err != nil {
		r.logger.Error("Failed to mark eligibility record slipped",
			zap.Int64("id", id),
			zap.Int64("transmission_id", transmissionID),
			zap.Error(err))
		return fmt.Errorf("failed to mark eligibility record slipped: %w", err)
	}

	return requireRow(result)
}

// Delete removes a record. Approved and Rejected records are review trail
// and are refused.
func (r *EligibilityRepository) Delete(ctx context.Context, id int64) error {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !rec.Status.Deletable() {
		return fmt.Errorf("eligibility record %d in status %s may not be deleted", id, rec.Status)
	}

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM eligibility_records WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete eligibility record", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete eligibility record: %w", err)
	}

	return nil
}

// scanner covers *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEligibility(row scanner) (*entity.EligibilityRecord, error) {
	var rec entity.EligibilityRecord
	var status string
	var dob sql.NullTime
	var transmissionID sql.NullInt64

	err := row.Scan(
		&rec.ID,
		&rec.TaxYear,
		&rec.ChildFirstName,
		&rec.ChildLastName,
		&dob,
		&rec.ParentFirstName,
		&rec.ParentLastName,
		&rec.ParentSIN,
		&rec.AddressLine,
		&rec.City,
		&rec.Province,
		&rec.PostalCode,
		&rec.CanadianResident,
		&rec.ServiceStart,
		&rec.ServiceEnd,
		&rec.DaysOfService,
		&rec.EligibleFees,
		&rec.FeesPaid,
		&rec.FeesReimbursed,
		&status,
		&transmissionID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = entity.EligibilityStatus(status)
	if dob.Valid {
		rec.ChildDateOfBirth = &dob.Time
	}
	if transmissionID.Valid {
		rec.TransmissionID = &transmissionID.Int64
	}

	return &rec, nil
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// Verify interface compliance
var _ port.EligibilityRepository = (*EligibilityRepository)(nil)
