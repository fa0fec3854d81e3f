package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/workflow"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/naming"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/rl24"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/slip"
)

// maxSequenceRetries bounds the retry loop on sequence allocation
// conflicts before the failure is surfaced as transient
const maxSequenceRetries = 3

// ErrSequenceContention is returned when a commit keeps losing the
// sequence race; the whole ProcessBatch call is safe to retry
var ErrSequenceContention = errors.New("could not allocate a sequence number, retry the batch")

// RecordDefect reports why one eligibility record was excluded from a batch
type RecordDefect struct {
	EligibilityID int64    `json:"eligibility_id"`
	Problems      []string `json:"problems"`
}

// BatchResult is the non-throwing outcome of a preview or commit run.
// Input defects never abort the run; generation defects abort it with
// nothing written; reconciliation findings ride along in Validation.
type BatchResult struct {
	TaxYear          int                      `json:"tax_year"`
	Preview          bool                     `json:"preview"`
	TransmissionType entity.TransmissionType  `json:"transmission_type"`
	SequenceNumber   int                      `json:"sequence_number"`
	Filename         string                   `json:"filename"`
	IncludedSlips    int                      `json:"included_slips"`
	Defects          []RecordDefect           `json:"defects,omitempty"`
	GenerationErrors []string                 `json:"generation_errors,omitempty"`
	Summary          *entity.Summary          `json:"summary,omitempty"`
	Validation       *entity.ValidationResult `json:"validation,omitempty"`
	Transmission     *entity.Transmission     `json:"transmission,omitempty"`
	XML              []byte                   `json:"-"`
}

// Generated reports whether the run produced a document
func (r *BatchResult) Generated() bool {
	return len(r.GenerationErrors) == 0
}

// AmendmentItem describes one correction against a previously filed slip
type AmendmentItem struct {
	PreviousSlipNumber string       `json:"previous_slip_number"`
	Cancel             bool         `json:"cancel"`
	Amounts            slip.Amounts `json:"amounts"`
}

// BatchService orchestrates the batch transmission pipeline: promotion of
// approved eligibility records to slips, sequence allocation, XML
// generation, validation and persistence.
type BatchService interface {
	// PreviewBatch runs the full pipeline without persisting anything or
	// consuming a sequence number. Its sequence and filename are advisory:
	// a commit finishing first will shift them.
	PreviewBatch(ctx context.Context, taxYear int) (*BatchResult, error)

	// ProcessBatch runs the pipeline and atomically reserves the sequence,
	// persists the transmission and slips, and writes the XML artifact.
	ProcessBatch(ctx context.Context, taxYear int) (*BatchResult, error)

	// ProcessAmendment files corrections against previously filed slips as
	// a new transmission; the originals are never edited in place.
	ProcessAmendment(ctx context.Context, taxYear int, items []AmendmentItem) (*BatchResult, error)

	// SetDryRun forces preview semantics on the commit entry points
	SetDryRun(dryRun bool)
}

type batchServiceImpl struct {
	eligibilityRepo  port.EligibilityRepository
	transmissionRepo port.TransmissionRepository
	slipRepo         port.SlipRepository
	txManager        port.TransactionManager
	storage          port.FileStorage
	settings         port.SettingsProvider
	builder          *slip.Builder
	validator        *rl24.Validator
	logger           Logger
	dryRun           bool
}

// NewBatchService creates a new BatchService
func NewBatchService(
	eligibilityRepo port.EligibilityRepository,
	transmissionRepo port.TransmissionRepository,
	slipRepo port.SlipRepository,
	txManager port.TransactionManager,
	storage port.FileStorage,
	settings port.SettingsProvider,
	validator *rl24.Validator,
	logger Logger,
) BatchService {
	return &batchServiceImpl{
		eligibilityRepo:  eligibilityRepo,
		transmissionRepo: transmissionRepo,
		slipRepo:         slipRepo,
		txManager:        txManager,
		storage:          storage,
		settings:         settings,
		builder:          slip.NewBuilder(),
		validator:        validator,
		logger:           logger,
	}
}

// SetDryRun forces preview semantics on ProcessBatch and ProcessAmendment
func (s *batchServiceImpl) SetDryRun(dryRun bool) {
	s.dryRun = dryRun
}

// preparedSlip pairs a built slip with its source record
type preparedSlip struct {
	record *entity.EligibilityRecord
	slip   *entity.Slip
}

// PreviewBatch runs the pipeline without writes or locks
func (s *batchServiceImpl) PreviewBatch(ctx context.Context, taxYear int) (*BatchResult, error) {
	prepared, result, err := s.prepareOriginals(ctx, taxYear)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, prepared, result, true)
}

// ProcessBatch runs the pipeline and commits, unless dry run is forced
func (s *batchServiceImpl) ProcessBatch(ctx context.Context, taxYear int) (*BatchResult, error) {
	prepared, result, err := s.prepareOriginals(ctx, taxYear)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, prepared, result, s.dryRun)
}

// ProcessAmendment files Amended/Cancelled slips as a fresh transmission
func (s *batchServiceImpl) ProcessAmendment(ctx context.Context, taxYear int, items []AmendmentItem) (*BatchResult, error) {
	result := &BatchResult{TaxYear: taxYear, TransmissionType: entity.TransmissionCancellation}

	var prepared []*preparedSlip
	allCancel := true
	for _, item := range items {
		prior, err := s.slipRepo.FindBySlipNumber(ctx, taxYear, item.PreviousSlipNumber)
		if err != nil {
			if errors.Is(err, port.ErrNotFound) {
				result.Defects = append(result.Defects, RecordDefect{
					Problems: []string{fmt.Sprintf("no filed slip carries number %s for %d", item.PreviousSlipNumber, taxYear)},
				})
				continue
			}
			return nil, err
		}

		rec, err := s.eligibilityRepo.GetByID(ctx, prior.EligibilityID)
		if err != nil {
			return nil, err
		}

		number := strconv.Itoa(len(prepared) + 1)
		var built *entity.Slip
		if item.Cancel {
			built, err = s.builder.BuildCancelled(rec, number, item.PreviousSlipNumber)
		} else {
			allCancel = false
			built, err = s.builder.BuildAmended(rec, item.Amounts, number, item.PreviousSlipNumber)
		}
		if err != nil {
			var buildErr *slip.BuildError
			if errors.As(err, &buildErr) {
				result.Defects = append(result.Defects, RecordDefect{
					EligibilityID: buildErr.EligibilityID,
					Problems:      buildErr.Problems,
				})
				continue
			}
			return nil, err
		}

		prepared = append(prepared, &preparedSlip{record: rec, slip: built})
	}

	if !allCancel {
		result.TransmissionType = entity.TransmissionAmendment
	}

	return s.finish(ctx, prepared, result, s.dryRun)
}

// prepareOriginals builds Original slips for every approved, not-yet-slipped
// record. A record with an input defect is reported and excluded; the rest
// of the batch continues.
func (s *batchServiceImpl) prepareOriginals(ctx context.Context, taxYear int) ([]*preparedSlip, *BatchResult, error) {
	result := &BatchResult{TaxYear: taxYear, TransmissionType: entity.TransmissionOriginal}

	records, err := s.eligibilityRepo.ListUnslipped(ctx, taxYear)
	if err != nil {
		return nil, nil, err
	}

	var prepared []*preparedSlip
	for _, rec := range records {
		number := strconv.Itoa(len(prepared) + 1)
		built, err := s.builder.BuildOriginal(rec, slip.Amounts{
			Days:           rec.DaysOfService,
			EligibleFees:   rec.EligibleFees,
			FeesPaid:       rec.FeesPaid,
			FeesReimbursed: rec.FeesReimbursed,
		}, number)
		if err != nil {
			var buildErr *slip.BuildError
			if errors.As(err, &buildErr) {
				result.Defects = append(result.Defects, RecordDefect{
					EligibilityID: buildErr.EligibilityID,
					Problems:      buildErr.Problems,
				})
				continue
			}
			return nil, nil, err
		}
		prepared = append(prepared, &preparedSlip{record: rec, slip: built})
	}

	return prepared, result, nil
}

// renumber assigns slip numbers starting at base in preparation order.
// Numbering continues across transmissions within a tax year, so a slip
// number identifies exactly one slip for amendment lineage.
func renumber(prepared []*preparedSlip, base int) {
	for i, p := range prepared {
		p.slip.SlipNumber = strconv.Itoa(base + i)
	}
}

// finish generates the document and, unless previewing, commits it
func (s *batchServiceImpl) finish(ctx context.Context, prepared []*preparedSlip, result *BatchResult, preview bool) (*BatchResult, error) {
	result.Preview = preview
	result.IncludedSlips = len(prepared)

	profile, err := s.settings.ProviderProfile(ctx)
	if err != nil {
		return nil, err
	}
	transmitter, err := s.settings.TransmitterName(ctx)
	if err != nil {
		return nil, err
	}

	// Advisory sequence and slip numbers: the commit path reallocates both
	// inside the transaction
	seq, err := s.transmissionRepo.NextSequenceNumber(ctx, result.TaxYear)
	if err != nil {
		return nil, err
	}
	slipBase, err := s.slipRepo.NextSlipNumber(ctx, result.TaxYear)
	if err != nil {
		return nil, err
	}
	renumber(prepared, slipBase)

	genResult, genErrs := s.generate(profile, transmitter, result.TaxYear, seq, result.TransmissionType, prepared)
	if genErrs != nil {
		result.GenerationErrors = genErrs
		s.logger.Warn("Batch generation refused",
			"tax_year", result.TaxYear,
			"errors", genErrs)
		return result, nil
	}

	if preview {
		filename, err := naming.GenerateFilename(result.TaxYear, profile.PreparerNumber, seq)
		if err != nil {
			return nil, err
		}
		result.SequenceNumber = seq
		result.Filename = filename
		result.Summary = genResult.Summary
		result.XML = genResult.XML
		result.Validation = s.validator.ValidateBytes(genResult.XML)
		return result, nil
	}

	return s.commit(ctx, prepared, result, profile, transmitter)
}

// generate runs the XML generator once for the given sequence number
func (s *batchServiceImpl) generate(
	profile entity.ProviderProfile,
	transmitter string,
	taxYear, sequence int,
	ttype entity.TransmissionType,
	prepared []*preparedSlip,
) (*rl24.GenerateResult, []string) {
	gen := rl24.NewGenerator(nil)

	err := gen.SetTransmissionData(rl24.TransmissionData{
		TaxYear:          taxYear,
		SequenceNumber:   sequence,
		TransmissionType: ttype,
		PreparerNumber:   profile.PreparerNumber,
		TransmitterName:  transmitter,
		Issuer:           profile,
	})
	if err != nil {
		return nil, []string{err.Error()}
	}

	for _, p := range prepared {
		gen.AddSlip(p.slip)
	}

	genResult, err := gen.Generate()
	if err != nil {
		return nil, gen.Errors()
	}
	return genResult, nil
}

// commit atomically allocates the sequence, persists the transmission and
// its slips, marks the source records and writes the artifact. A lost
// sequence race rolls everything back and retries with a fresh number;
// numbers burned by unrelated failures are never reused.
func (s *batchServiceImpl) commit(
	ctx context.Context,
	prepared []*preparedSlip,
	result *BatchResult,
	profile entity.ProviderProfile,
	transmitter string,
) (*BatchResult, error) {
	markSlipped := result.TransmissionType == entity.TransmissionOriginal

	for attempt := 1; attempt <= maxSequenceRetries; attempt++ {
		err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			seq, err := s.transmissionRepo.NextSequenceNumber(txCtx, result.TaxYear)
			if err != nil {
				return err
			}
			slipBase, err := s.slipRepo.NextSlipNumber(txCtx, result.TaxYear)
			if err != nil {
				return err
			}
			renumber(prepared, slipBase)

			genResult, genErrs := s.generate(profile, transmitter, result.TaxYear, seq, result.TransmissionType, prepared)
			if genErrs != nil {
				return fmt.Errorf("generation failed: %v", genErrs)
			}

			filename, err := naming.GenerateFilename(result.TaxYear, profile.PreparerNumber, seq)
			if err != nil {
				return err
			}

			validation := s.validator.ValidateBytes(genResult.XML)

			tr := &entity.Transmission{
				UUID:             uuid.NewString(),
				TaxYear:          result.TaxYear,
				SequenceNumber:   seq,
				Filename:         filename,
				TransmissionType: result.TransmissionType,
				Status:           workflow.StateGenerated.String(),
				Provider:         profile,
				SlipCount:        genResult.Summary.SlipCount,
				TotalDays:        genResult.Summary.TotalDays,
				TotalBox11:       genResult.Summary.TotalBox11,
				TotalBox12:       genResult.Summary.TotalBox12,
				TotalBox13:       genResult.Summary.TotalBox13,
				TotalBox14:       genResult.Summary.TotalBox14,
				ValidationClean:  !validation.HasErrors(),
			}

			if err := s.transmissionRepo.Create(txCtx, tr); err != nil {
				return err
			}

			for _, p := range prepared {
				p.slip.TransmissionID = tr.ID
				if err := s.slipRepo.Create(txCtx, p.slip); err != nil {
					return err
				}
				if markSlipped {
					if err := s.eligibilityRepo.MarkSlipped(txCtx, p.record.ID, tr.ID); err != nil {
						return err
					}
				}
			}

			result.SequenceNumber = seq
			result.Filename = filename
			result.Summary = genResult.Summary
			result.XML = genResult.XML
			result.Validation = validation
			result.Transmission = tr
			return nil
		})

		if err == nil {
			// The artifact is written only once the row is committed, so a
			// failed transaction never strands a file on disk. A failed
			// write here is recoverable: the row records the filename.
			if err := s.storage.Save(ctx, result.Filename, result.XML); err != nil {
				return nil, fmt.Errorf("transmission %s committed but artifact write failed: %w", result.Filename, err)
			}
			s.logger.Info("Batch transmission committed",
				"tax_year", result.TaxYear,
				"sequence", result.SequenceNumber,
				"filename", result.Filename,
				"slips", result.IncludedSlips)
			return result, nil
		}

		if errors.Is(err, port.ErrSequenceConflict) {
			s.logger.Warn("Sequence conflict, retrying batch commit",
				"tax_year", result.TaxYear,
				"attempt", attempt)
			continue
		}

		return nil, err
	}

	return nil, ErrSequenceContention
}
