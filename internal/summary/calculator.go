// Package summary aggregates slips into transmission-level totals.
package summary

import (
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// Calculator computes per-box totals over the slips of one transmission.
// Each box is summed independently; nothing is derived by re-running the
// per-slip formula, so a reconciliation check against the summed Box 14
// can actually detect upstream arithmetic defects.
type Calculator struct{}

// NewCalculator creates a summary calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate sums the slips into a Summary
func (c *Calculator) Calculate(slips []*entity.Slip) *entity.Summary {
	s := &entity.Summary{SlipCount: len(slips)}

	for _, slip := range slips {
		s.TotalDays += slip.Box10Days
		s.TotalBox11 += slip.Box11EligibleFees
		s.TotalBox12 += slip.Box12FeesPaid
		s.TotalBox13 += slip.Box13FeesReimbursed
		s.TotalBox14 += slip.Box14EligibleAmount
	}

	s.TotalBox11 = entity.RoundAmount(s.TotalBox11)
	s.TotalBox12 = entity.RoundAmount(s.TotalBox12)
	s.TotalBox13 = entity.RoundAmount(s.TotalBox13)
	s.TotalBox14 = entity.RoundAmount(s.TotalBox14)

	return s
}

// Reconcile re-derives the Box 14 total from the Box 12 and 13 totals and
// compares it with the summed per-slip Box 14 values. A mismatch means a
// data-entry or upstream-calculation defect and is reported, never
// silently corrected.
func (c *Calculator) Reconcile(s *entity.Summary) *entity.ValidationResult {
	result := &entity.ValidationResult{}

	derived := entity.RoundAmount(s.TotalBox12 - s.TotalBox13)
	if !entity.SameAmount(derived, s.TotalBox14) {
		result.Add(entity.FindingSummaryMismatch, entity.SeverityError, "Sommaire",
			"total box 14 is %.2f but box 12 minus box 13 gives %.2f", s.TotalBox14, derived)
	}

	return result
}
