// Package slip builds RL-24 slip records from approved eligibility records.
// Building is referentially transparent: the same inputs always produce the
// same slip, and a slip is either fully built or not built at all.
package slip

import (
	"fmt"
	"strings"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/validate"
)

// BuildError reports every required field that was missing or invalid for
// one eligibility record, so the batch layer can show exact remediation.
type BuildError struct {
	EligibilityID int64
	Problems      []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("eligibility record %d cannot be slipped: %s",
		e.EligibilityID, strings.Join(e.Problems, "; "))
}

// Amounts carries the computed box values fed into a slip. Box 14 is never
// an input; it is derived from boxes 12 and 13.
type Amounts struct {
	Days           int
	EligibleFees   float64
	FeesPaid       float64
	FeesReimbursed float64
}

// Builder constructs slips; it holds no state between calls
type Builder struct{}

// NewBuilder creates a slip builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildOriginal builds an Original slip from an approved eligibility record
func (b *Builder) BuildOriginal(rec *entity.EligibilityRecord, amounts Amounts, slipNumber string) (*entity.Slip, error) {
	return b.build(rec, amounts, slipNumber, entity.SlipOriginal, "")
}

// BuildAmended builds an Amended slip superseding a previously filed slip
func (b *Builder) BuildAmended(rec *entity.EligibilityRecord, amounts Amounts, slipNumber, previousSlipNumber string) (*entity.Slip, error) {
	if previousSlipNumber == "" {
		return nil, &BuildError{EligibilityID: rec.ID, Problems: []string{"amended slip requires the previous slip number"}}
	}
	return b.build(rec, amounts, slipNumber, entity.SlipAmended, previousSlipNumber)
}

// BuildCancelled builds a Cancelled slip. The amount boxes are zeroed per
// the protocol; the previous slip number is retained for audit lineage.
func (b *Builder) BuildCancelled(rec *entity.EligibilityRecord, slipNumber, previousSlipNumber string) (*entity.Slip, error) {
	if previousSlipNumber == "" {
		return nil, &BuildError{EligibilityID: rec.ID, Problems: []string{"cancelled slip requires the previous slip number"}}
	}
	return b.build(rec, Amounts{}, slipNumber, entity.SlipCancelled, previousSlipNumber)
}

func (b *Builder) build(rec *entity.EligibilityRecord, amounts Amounts, slipNumber string, slipType entity.SlipType, previousSlipNumber string) (*entity.Slip, error) {
	problems := checkRecord(rec)

	if slipNumber == "" {
		problems = append(problems, "slip number is required")
	}
	if amounts.Days < 0 {
		problems = append(problems, "days of service must not be negative")
	}
	for _, amt := range []struct {
		name  string
		value float64
	}{
		{"box 11 eligible fees", amounts.EligibleFees},
		{"box 12 fees paid", amounts.FeesPaid},
		{"box 13 fees reimbursed", amounts.FeesReimbursed},
	} {
		if err := validate.ValidateAmount(amt.value); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", amt.name, err))
		}
	}

	if len(problems) > 0 {
		return nil, &BuildError{EligibilityID: rec.ID, Problems: problems}
	}

	box12 := entity.RoundAmount(amounts.FeesPaid)
	box13 := entity.RoundAmount(amounts.FeesReimbursed)

	s := &entity.Slip{
		EligibilityID:      rec.ID,
		SlipNumber:         slipNumber,
		SlipType:           slipType,
		PreviousSlipNumber: previousSlipNumber,
		TaxYear:            rec.TaxYear,
		ChildFirstName:     rec.ChildFirstName,
		ChildLastName:      rec.ChildLastName,
		ParentFirstName:    rec.ParentFirstName,
		ParentLastName:     rec.ParentLastName,
		ParentSIN:          rec.ParentSIN,
		AddressLine:        rec.AddressLine,
		City:               rec.City,
		Province:           rec.Province,
		PostalCode:         rec.PostalCode,
		ServiceStart:       rec.ServiceStart,
		ServiceEnd:         rec.ServiceEnd,

		Box10Days:           amounts.Days,
		Box11EligibleFees:   entity.RoundAmount(amounts.EligibleFees),
		Box12FeesPaid:       box12,
		Box13FeesReimbursed: box13,
		Box14EligibleAmount: entity.RoundAmount(box12 - box13),
	}

	return s, nil
}

// checkRecord validates the eligibility fields every slip type requires
func checkRecord(rec *entity.EligibilityRecord) []string {
	var problems []string

	if rec.Status != entity.EligibilityApproved {
		problems = append(problems, fmt.Sprintf("record status is %s, only APPROVED records may be slipped", rec.Status))
	}
	if rec.TaxYear < 2000 || rec.TaxYear > 2099 {
		problems = append(problems, fmt.Sprintf("tax year %d is out of range", rec.TaxYear))
	}
	if rec.ChildFirstName == "" || rec.ChildLastName == "" {
		problems = append(problems, "child name is required")
	}
	if rec.ParentFirstName == "" || rec.ParentLastName == "" {
		problems = append(problems, "parent name is required")
	}
	if err := validate.ValidateSIN(rec.ParentSIN); err != nil {
		problems = append(problems, err.Error())
	}
	if rec.AddressLine == "" || rec.City == "" {
		problems = append(problems, "address is required")
	}
	if err := validate.ValidatePostalCode(rec.PostalCode); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validate.ValidateDateRange(rec.ServiceStart, rec.ServiceEnd); err != nil {
		problems = append(problems, err.Error())
	}

	return problems
}
