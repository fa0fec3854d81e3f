package service

import (
	"context"
	"fmt"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// EligibilityService manages the review lifecycle of eligibility records
// upstream of the batch pipeline
type EligibilityService interface {
	CreateRecord(ctx context.Context, rec *entity.EligibilityRecord) error
	GetRecord(ctx context.Context, id int64) (*entity.EligibilityRecord, error)
	ListRecords(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error)
	ListUnslipped(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error)

	// UpdateStatus moves a record through review. Records already included
	// in a transmission are frozen; corrections go through amendments.
	UpdateStatus(ctx context.Context, id int64, status entity.EligibilityStatus) (*entity.EligibilityRecord, error)

	// DeleteRecord removes a Pending or Incomplete record
	DeleteRecord(ctx context.Context, id int64) error
}

type eligibilityServiceImpl struct {
	repo   port.EligibilityRepository
	logger Logger
}

// NewEligibilityService creates a new EligibilityService
func NewEligibilityService(repo port.EligibilityRepository, logger Logger) EligibilityService {
	return &eligibilityServiceImpl{repo: repo, logger: logger}
}

func (s *eligibilityServiceImpl) CreateRecord(ctx context.Context, rec *entity.EligibilityRecord) error {
	if rec.Status == "" {
		rec.Status = entity.EligibilityPending
	}
	if !rec.Status.IsValid() {
		return fmt.Errorf("invalid eligibility status: %s", rec.Status)
	}
	if rec.TaxYear < 2000 || rec.TaxYear > 2099 {
		return fmt.Errorf("tax year out of range: %d", rec.TaxYear)
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}
	s.logger.Info("Eligibility record created",
		"record_id", rec.ID,
		"tax_year", rec.TaxYear,
		"status", string(rec.Status))
	return nil
}

func (s *eligibilityServiceImpl) GetRecord(ctx context.Context, id int64) (*entity.EligibilityRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *eligibilityServiceImpl) ListRecords(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error) {
	return s.repo.ListByTaxYear(ctx, taxYear)
}

func (s *eligibilityServiceImpl) ListUnslipped(ctx context.Context, taxYear int) ([]*entity.EligibilityRecord, error) {
	return s.repo.ListUnslipped(ctx, taxYear)
}

func (s *eligibilityServiceImpl) UpdateStatus(ctx context.Context, id int64, status entity.EligibilityStatus) (*entity.EligibilityRecord, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid eligibility status: %s", status)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Slipped() {
		return nil, fmt.Errorf("record %d is already included in transmission %d, file an amendment instead", id, *rec.TransmissionID)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	rec.Status = status

	s.logger.Info("Eligibility status changed",
		"record_id", id,
		"status", string(status))
	return rec, nil
}

func (s *eligibilityServiceImpl) DeleteRecord(ctx context.Context, id int64) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !rec.Status.Deletable() {
		return fmt.Errorf("record %d in status %s may not be deleted", id, rec.Status)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Eligibility record deleted", "record_id", id)
	return nil
}
