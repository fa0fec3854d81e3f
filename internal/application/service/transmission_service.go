package service

import (
	"context"
	"fmt"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/workflow"
)

// TransmissionService drives a finished transmission through the filing
// lifecycle and exposes its persisted form and artifact
type TransmissionService interface {
	GetTransmission(ctx context.Context, id int64) (*entity.Transmission, error)
	GetTransmissionByUUID(ctx context.Context, uuid string) (*entity.Transmission, error)
	ListTransmissions(ctx context.Context, limit, offset int) ([]*entity.Transmission, error)
	ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.Transmission, error)

	// ReadArtifact returns the XML file exactly as written at commit time
	ReadArtifact(ctx context.Context, id int64) (string, []byte, error)

	// MarkValidated records that the file passed validation review
	MarkValidated(ctx context.Context, id int64) (*entity.Transmission, error)

	// MarkSubmitted records that the file was sent to Revenu Québec
	MarkSubmitted(ctx context.Context, id int64) (*entity.Transmission, error)

	// MarkAccepted and MarkRejected record the authority's disposition
	MarkAccepted(ctx context.Context, id int64) (*entity.Transmission, error)
	MarkRejected(ctx context.Context, id int64) (*entity.Transmission, error)

	// Cancel withdraws a transmission that has not reached a terminal state
	Cancel(ctx context.Context, id int64) (*entity.Transmission, error)
}

type transmissionServiceImpl struct {
	transmissionRepo port.TransmissionRepository
	slipRepo         port.SlipRepository
	storage          port.FileStorage
	logger           Logger
}

// NewTransmissionService creates a new TransmissionService
func NewTransmissionService(
	transmissionRepo port.TransmissionRepository,
	slipRepo port.SlipRepository,
	storage port.FileStorage,
	logger Logger,
) TransmissionService {
	return &transmissionServiceImpl{
		transmissionRepo: transmissionRepo,
		slipRepo:         slipRepo,
		storage:          storage,
		logger:           logger,
	}
}

func (s *transmissionServiceImpl) GetTransmission(ctx context.Context, id int64) (*entity.Transmission, error) {
	tr, err := s.transmissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachSlips(ctx, tr)
}

func (s *transmissionServiceImpl) GetTransmissionByUUID(ctx context.Context, uuid string) (*entity.Transmission, error) {
	tr, err := s.transmissionRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return s.attachSlips(ctx, tr)
}

func (s *transmissionServiceImpl) attachSlips(ctx context.Context, tr *entity.Transmission) (*entity.Transmission, error) {
	slips, err := s.slipRepo.GetByTransmissionID(ctx, tr.ID)
	if err != nil {
		return nil, err
	}
	tr.Slips = slips
	return tr, nil
}

func (s *transmissionServiceImpl) ListTransmissions(ctx context.Context, limit, offset int) ([]*entity.Transmission, error) {
	return s.transmissionRepo.List(ctx, limit, offset)
}

func (s *transmissionServiceImpl) ListByTaxYear(ctx context.Context, taxYear int) ([]*entity.Transmission, error) {
	return s.transmissionRepo.ListByTaxYear(ctx, taxYear)
}

func (s *transmissionServiceImpl) ReadArtifact(ctx context.Context, id int64) (string, []byte, error) {
	tr, err := s.transmissionRepo.GetByID(ctx, id)
	if err != nil {
		return "", nil, err
	}
	content, err := s.storage.Read(ctx, tr.Filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read artifact %s: %w", tr.Filename, err)
	}
	return tr.Filename, content, nil
}

func (s *transmissionServiceImpl) MarkValidated(ctx context.Context, id int64) (*entity.Transmission, error) {
	return s.fire(ctx, id, workflow.TriggerValidate)
}

func (s *transmissionServiceImpl) MarkSubmitted(ctx context.Context, id int64) (*entity.Transmission, error) {
	return s.fire(ctx, id, workflow.TriggerSubmit)
}

func (s *transmissionServiceImpl) MarkAccepted(ctx context.Context, id int64) (*entity.Transmission, error) {
	return s.fire(ctx, id, workflow.TriggerAccept)
}

func (s *transmissionServiceImpl) MarkRejected(ctx context.Context, id int64) (*entity.Transmission, error) {
	return s.fire(ctx, id, workflow.TriggerReject)
}

func (s *transmissionServiceImpl) Cancel(ctx context.Context, id int64) (*entity.Transmission, error) {
	return s.fire(ctx, id, workflow.TriggerCancel)
}

// fire runs one lifecycle trigger through the state machine and persists
// the resulting status
func (s *transmissionServiceImpl) fire(ctx context.Context, id int64, trigger workflow.Trigger) (*entity.Transmission, error) {
	tr, err := s.transmissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	machine := workflow.NewTransmissionMachine(workflow.State(tr.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, fmt.Errorf("transmission %d in status %s: %w", id, tr.Status, err)
	}
	next := machine.State()

	if err := s.transmissionRepo.UpdateStatus(ctx, id, next.String()); err != nil {
		return nil, err
	}
	tr.Status = next.String()

	s.logger.Info("Transmission status changed",
		"transmission_id", id,
		"trigger", string(trigger),
		"status", tr.Status)

	return tr, nil
}
