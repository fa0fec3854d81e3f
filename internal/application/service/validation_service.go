package service

import (
	"context"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/naming"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/rl24"
)

// FileReport is the outcome of validating one uploaded transmission file
type FileReport struct {
	Filename       string                   `json:"filename"`
	FilenameValid  bool                     `json:"filename_valid"`
	FilenameError  string                   `json:"filename_error,omitempty"`
	TaxYearSuffix  int                      `json:"tax_year_suffix,omitempty"`
	PreparerNumber string                   `json:"preparer_number,omitempty"`
	SequenceNumber int                      `json:"sequence_number,omitempty"`
	Result         *entity.ValidationResult `json:"result"`
}

// ValidationService checks externally produced transmission files against
// the same rules the pipeline applies to its own output
type ValidationService interface {
	// ValidateContent validates raw XML without a filename
	ValidateContent(ctx context.Context, content []byte) *entity.ValidationResult

	// ValidateUpload validates both the filename convention and the
	// document content of an uploaded file
	ValidateUpload(ctx context.Context, filename string, content []byte) *FileReport
}

type validationServiceImpl struct {
	validator *rl24.Validator
	logger    Logger
}

// NewValidationService creates a new ValidationService
func NewValidationService(validator *rl24.Validator, logger Logger) ValidationService {
	return &validationServiceImpl{validator: validator, logger: logger}
}

func (s *validationServiceImpl) ValidateContent(ctx context.Context, content []byte) *entity.ValidationResult {
	result := s.validator.ValidateBytes(content)
	s.logger.Info("Validated transmission content",
		"bytes", len(content),
		"findings", len(result.Findings),
		"clean", result.IsClean())
	return result
}

func (s *validationServiceImpl) ValidateUpload(ctx context.Context, filename string, content []byte) *FileReport {
	report := &FileReport{Filename: filename}

	parsed, err := naming.ParseFilename(filename)
	if err != nil {
		report.FilenameError = err.Error()
	} else {
		report.FilenameValid = true
		report.TaxYearSuffix = parsed.YearSuffix
		report.PreparerNumber = parsed.PreparerNumber
		report.SequenceNumber = parsed.Sequence
	}

	report.Result = s.validator.ValidateBytes(content)

	s.logger.Info("Validated uploaded transmission file",
		"filename", filename,
		"filename_valid", report.FilenameValid,
		"findings", len(report.Result.Findings),
		"clean", report.Result.IsClean())
	return report
}
