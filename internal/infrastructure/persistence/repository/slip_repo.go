package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// SlipRepository implements port.SlipRepository
type SlipRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSlipRepository creates a new slip repository
func NewSlipRepository(db *sql.DB, logger *zap.Logger) port.SlipRepository {
	return &SlipRepository{
		db:     db,
		logger: logger,
	}
}

const slipColumns = `
	id, transmission_id, eligibility_id, slip_number, slip_type, previous_slip_number,
	tax_year, child_first_name, child_last_name, parent_first_name, parent_last_name,
	parent_sin, address_line, city, province, postal_code,
	service_start, service_end,
	box10_days, box11_eligible_fees, box12_fees_paid, box13_fees_reimbursed,
	box14_eligible_amount, created_at
`

// Create inserts a slip row
func (r *SlipRepository) Create(ctx context.Context, s *entity.Slip) error {
	query := `
		INSERT INTO slips (
			transmission_id, eligibility_id, slip_number, slip_type, previous_slip_number,
			tax_year, child_first_name, child_last_name, parent_first_name, parent_last_name,
			parent_sin, address_line, city, province, postal_code,
			service_start, service_end,
			box10_days, box11_eligible_fees, box12_fees_paid, box13_fees_reimbursed,
			box14_eligible_amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var previous sql.NullString
	if s.PreviousSlipNumber != "" {
		previous = sql.NullString{String: s.PreviousSlipNumber, Valid: true}
	}

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		s.TransmissionID,
		s.EligibilityID,
		s.SlipNumber,
		string(s.SlipType),
		previous,
		s.TaxYear,
		s.ChildFirstName,
		s.ChildLastName,
		s.ParentFirstName,
		s.ParentLastName,
		s.ParentSIN,
		s.AddressLine,
		s.City,
		s.Province,
		s.PostalCode,
		s.ServiceStart,
		s.ServiceEnd,
		s.Box10Days,
		s.Box11EligibleFees,
		s.Box12FeesPaid,
		s.Box13FeesReimbursed,
		s.Box14EligibleAmount,
	)
	if err != nil {
		r.logger.Error("Failed to create slip", zap.String("slip_number", s.SlipNumber), zap.Error(err))
		return fmt.Errorf("failed to create slip: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	s.ID = id
	return nil
}

// GetByTransmissionID retrieves the slips of one transmission in slip
// number order
func (r *SlipRepository) GetByTransmissionID(ctx context.Context, transmissionID int64) ([]*entity.Slip, error) {
	query := `SELECT ` + slipColumns + ` FROM slips WHERE transmission_id = ? ORDER BY id`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, transmissionID)
	if err != nil {
		r.logger.Error("Failed to list slips", zap.Int64("transmission_id", transmissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list slips: %w", err)
	}
	defer rows.Close()

	var slips []*entity.Slip
	for rows.Next() {
		s, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slip: %w", err)
		}
		slips = append(slips, s)
	}

	return slips, rows.Err()
}

// FindBySlipNumber locates the slip carrying a number within a tax year,
// for amendment lineage lookups across transmissions. Numbers are allocated
// monotonically per tax year so at most one row matches.
func (r *SlipRepository) FindBySlipNumber(ctx context.Context, taxYear int, slipNumber string) (*entity.Slip, error) {
	query := `SELECT ` + slipColumns + ` FROM slips WHERE tax_year = ? AND slip_number = ? LIMIT 1`

	s, err := scanSlip(getExecutor(ctx, r.db).QueryRowContext(ctx, query, taxYear, slipNumber))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to find slip",
			zap.Int("tax_year", taxYear),
			zap.String("slip_number", slipNumber),
			zap.Error(err))
		return nil, fmt.Errorf("failed to find slip: %w", err)
	}

	return s, nil
}

// NextSlipNumber returns max(slip_number)+1 across the tax year, starting
// at 1. Numbers are stored as digit strings; the cast keeps the comparison
// numeric.
func (r *SlipRepository) NextSlipNumber(ctx context.Context, taxYear int) (int, error) {
	query := `SELECT COALESCE(MAX(CAST(slip_number AS INTEGER)), 0) + 1 FROM slips WHERE tax_year = ?`

	var next int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, taxYear).Scan(&next); err != nil {
		r.logger.Error("Failed to compute next slip number", zap.Int("tax_year", taxYear), zap.Error(err))
		return 0, fmt.Errorf("failed to compute next slip number: %w", err)
	}

	return next, nil
}

func scanSlip(row scanner) (*entity.Slip, error) {
	var s entity.Slip
	var slipType string
	var previous sql.NullString

	err := row.Scan(
		&s.ID,
		&s.TransmissionID,
		&s.EligibilityID,
		&s.SlipNumber,
		&slipType,
		&previous,
		&s.TaxYear,
		&s.ChildFirstName,
		&s.ChildLastName,
		&s.ParentFirstName,
		&s.ParentLastName,
		&s.ParentSIN,
		&s.AddressLine,
		&s.City,
		&s.Province,
		&s.PostalCode,
		&s.ServiceStart,
		&s.ServiceEnd,
		&s.Box10Days,
		&s.Box11EligibleFees,
		&s.Box12FeesPaid,
		&s.Box13FeesReimbursed,
		&s.Box14EligibleAmount,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.SlipType = entity.SlipType(slipType)
	if previous.Valid {
		s.PreviousSlipNumber = previous.String
	}

	return &s, nil
}

// Verify interface compliance
var _ port.SlipRepository = (*SlipRepository)(nil)
