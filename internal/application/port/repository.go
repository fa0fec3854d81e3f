package port

import (
	"context"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// EligibilityRepository defines persistence operations for EligibilityRecord.
// The pipeline reads approved records and writes back only the transmission
// marker; record content is owned by the surrounding application.
type EligibilityRepository interface {
	Create(ctx context.Context, rec *entity.EligibilityRecord) error
	GetByID(ctx context.Context, id int64) (*entity.EligibilityRecord, error)
	ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error)

	// ListUnslipped returns the Approved records for the tax year that are
	// not yet included in any transmission, ordered by id
	ListUnslipped(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error)

	UpdateStatus(ctx context.Context, id int64, status entity.EligibilityStatus) error

	// MarkSlipped records that the eligibility record was included in the
	// given transmission
	MarkSlipped(ctx context.Context, id int64, transmissionID int64) error

	// Delete removes a record; only Pending and Incomplete records may go
	Delete(ctx context.Context, id int64) error
}

// TransmissionRepository defines persistence operations for Transmission
// and its slips
type TransmissionRepository interface {
	// Create inserts the transmission row. The UNIQUE(tax_year,
	// sequence_number) constraint makes sequence allocation atomic: a
	// concurrent run that picked the same sequence fails here with
	// ErrSequenceConflict.
	Create(ctx context.Context, tr *entity.Transmission) error

	GetByID(ctx context.Context, id int64) (*entity.Transmission, error)
	GetByUUID(ctx context.Context, uuid string) (*entity.Transmission, error)
	ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.Transmission, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Transmission, error)

	// NextSequenceNumber returns max(sequence)+1 for the tax year,
	// starting at 1. Advisory only; Create is the serialization point.
	NextSequenceNumber(ctx context.Context, taxYear int) (int, error)

	UpdateStatus(ctx context.Context, id int64, status string) error
	SetValidationClean(ctx context.Context, id int64, clean bool) error
}

// SlipRepository defines persistence operations for Slip
type SlipRepository interface {
	Create(ctx context.Context, s *entity.Slip) error
	GetByTransmissionID(ctx context.Context, transmissionID int64) ([]*entity.Slip, error)

	// FindBySlipNumber locates a slip by number within a tax year for
	// amendment lineage lookups. Numbers are allocated monotonically per
	// tax year, so a number identifies at most one slip.
	FindBySlipNumber(ctx context.Context, taxYear int, slipNumber string) (*entity.Slip, error)

	// NextSlipNumber returns max(slip_number)+1 across every transmission
	// of the tax year, starting at 1. Numbering continues across
	// transmissions so amendment lineage never resolves to the wrong slip.
	NextSlipNumber(ctx context.Context, taxYear int) (int, error)
}

// TransactionManager executes a function within a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
