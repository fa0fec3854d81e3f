package slip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

func approvedRecord() *entity.EligibilityRecord {
	return &entity.EligibilityRecord{
		ID:              42,
		TaxYear:         2025,
		ChildFirstName:  "Emma",
		ChildLastName:   "Tremblay",
		ParentFirstName: "Julie",
		ParentLastName:  "Tremblay",
		ParentSIN:       "046454286",
		AddressLine:     "1200 rue Saint-Denis",
		City:            "Montreal",
		Province:        "QC",
		PostalCode:      "H2X 3J5",
		ServiceStart:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		ServiceEnd:      time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		Status:          entity.EligibilityApproved,
	}
}

func TestBuildOriginal(t *testing.T) {
	b := NewBuilder()

	s, err := b.BuildOriginal(approvedRecord(), Amounts{
		Days:           125,
		EligibleFees:   5000,
		FeesPaid:       4000,
		FeesReimbursed: 500,
	}, "1")

	require.NoError(t, err)
	assert.Equal(t, entity.SlipOriginal, s.SlipType)
	assert.Equal(t, "1", s.SlipNumber)
	assert.Empty(t, s.PreviousSlipNumber)
	assert.Equal(t, 125, s.Box10Days)
	assert.Equal(t, 5000.0, s.Box11EligibleFees)
	assert.Equal(t, 4000.0, s.Box12FeesPaid)
	assert.Equal(t, 500.0, s.Box13FeesReimbursed)
	assert.Equal(t, 3500.0, s.Box14EligibleAmount)
}

func TestBuildOriginal_Box14IsDerived(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		paid, reimbursed, want float64
	}{
		{4000, 500, 3500},
		{7600, 950, 6650},
		{100.10, 0.05, 100.05},
		{0.30, 0.10, 0.20}, // classic float trap: 0.3-0.1 != 0.2 without rounding
		{1234.56, 1234.56, 0},
	}

	for _, tt := range tests {
		s, err := b.BuildOriginal(approvedRecord(), Amounts{
			Days:           10,
			EligibleFees:   tt.paid,
			FeesPaid:       tt.paid,
			FeesReimbursed: tt.reimbursed,
		}, "1")
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Box14EligibleAmount,
			"box14 for paid=%.2f reimbursed=%.2f", tt.paid, tt.reimbursed)
		assert.True(t, entity.SameAmount(s.Box14EligibleAmount, s.Box12FeesPaid-s.Box13FeesReimbursed))
	}
}

func TestBuild_Idempotent(t *testing.T) {
	b := NewBuilder()
	amounts := Amounts{Days: 230, EligibleFees: 9500, FeesPaid: 7600, FeesReimbursed: 950}

	first, err := b.BuildOriginal(approvedRecord(), amounts, "7")
	require.NoError(t, err)
	second, err := b.BuildOriginal(approvedRecord(), amounts, "7")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_RejectsInvalidRecord(t *testing.T) {
	b := NewBuilder()
	amounts := Amounts{Days: 10, FeesPaid: 100}

	tests := []struct {
		name   string
		mutate func(*entity.EligibilityRecord)
		detail string
	}{
		{"not approved", func(r *entity.EligibilityRecord) { r.Status = entity.EligibilityPending }, "only APPROVED"},
		{"bad SIN", func(r *entity.EligibilityRecord) { r.ParentSIN = "123456789" }, "checksum"},
		{"missing child name", func(r *entity.EligibilityRecord) { r.ChildFirstName = "" }, "child name"},
		{"missing parent name", func(r *entity.EligibilityRecord) { r.ParentLastName = "" }, "parent name"},
		{"bad postal code", func(r *entity.EligibilityRecord) { r.PostalCode = "99999" }, "postal code"},
		{"inverted service period", func(r *entity.EligibilityRecord) {
			r.ServiceStart = r.ServiceEnd.AddDate(0, 1, 0)
		}, "after end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := approvedRecord()
			tt.mutate(rec)

			s, err := b.BuildOriginal(rec, amounts, "1")
			assert.Nil(t, s, "no partially built slip on failure")
			require.Error(t, err)

			var buildErr *BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Equal(t, rec.ID, buildErr.EligibilityID)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestBuild_CollectsAllProblems(t *testing.T) {
	b := NewBuilder()

	rec := approvedRecord()
	rec.ParentSIN = "123"
	rec.PostalCode = "nope"
	rec.ChildLastName = ""

	_, err := b.BuildOriginal(rec, Amounts{Days: -1, FeesPaid: -5}, "")
	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.GreaterOrEqual(t, len(buildErr.Problems), 5)
}

func TestBuildAmended(t *testing.T) {
	b := NewBuilder()

	s, err := b.BuildAmended(approvedRecord(), Amounts{Days: 125, EligibleFees: 5200, FeesPaid: 4200, FeesReimbursed: 500}, "1", "14")
	require.NoError(t, err)
	assert.Equal(t, entity.SlipAmended, s.SlipType)
	assert.Equal(t, "14", s.PreviousSlipNumber)
	assert.Equal(t, 3700.0, s.Box14EligibleAmount)

	_, err = b.BuildAmended(approvedRecord(), Amounts{}, "1", "")
	assert.Error(t, err, "amended slip without lineage must fail")
}

func TestBuildCancelled_ZeroesAmounts(t *testing.T) {
	b := NewBuilder()

	s, err := b.BuildCancelled(approvedRecord(), "1", "14")
	require.NoError(t, err)
	assert.Equal(t, entity.SlipCancelled, s.SlipType)
	assert.Equal(t, "14", s.PreviousSlipNumber)
	assert.Zero(t, s.Box10Days)
	assert.Zero(t, s.Box11EligibleFees)
	assert.Zero(t, s.Box12FeesPaid)
	assert.Zero(t, s.Box13FeesReimbursed)
	assert.Zero(t, s.Box14EligibleAmount)

	_, err = b.BuildCancelled(approvedRecord(), "1", "")
	assert.Error(t, err, "cancelled slip without lineage must fail")
}
