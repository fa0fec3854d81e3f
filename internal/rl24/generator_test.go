package rl24

import (
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

func testTransmissionData() TransmissionData {
	return TransmissionData{
		TaxYear:          2025,
		SequenceNumber:   1,
		TransmissionType: entity.TransmissionOriginal,
		PreparerNumber:   "123456",
		TransmitterName:  "Garderie Les Petits Pas",
		Issuer: entity.ProviderProfile{
			Name:           "Garderie Les Petits Pas inc.",
			NEQ:            "1234567890",
			AddressLine:    "450 boulevard Rosemont",
			City:           "Montreal",
			Province:       "QC",
			PostalCode:     "H2S 1Z2",
			PreparerNumber: "123456",
		},
	}
}

func testSlip(number string, days int, box11, box12, box13 float64) *entity.Slip {
	return &entity.Slip{
		EligibilityID:       1,
		SlipNumber:          number,
		SlipType:            entity.SlipOriginal,
		TaxYear:             2025,
		ChildFirstName:      "Emma",
		ChildLastName:       "Tremblay",
		ParentFirstName:     "Julie",
		ParentLastName:      "Tremblay",
		ParentSIN:           "046454286",
		AddressLine:         "1200 rue Saint-Denis",
		City:                "Montreal",
		Province:            "QC",
		PostalCode:          "H2X 3J5",
		ServiceStart:        time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		ServiceEnd:          time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		Box10Days:           days,
		Box11EligibleFees:   box11,
		Box12FeesPaid:       box12,
		Box13FeesReimbursed: box13,
		Box14EligibleAmount: entity.RoundAmount(box12 - box13),
	}
}

func TestGenerator_StateProgression(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	assert.Equal(t, StateIdle, g.State())

	require.NoError(t, g.SetTransmissionData(testTransmissionData()))
	assert.Equal(t, StateTransmissionDataSet, g.State())

	g.AddSlip(testSlip("1", 125, 5000, 4000, 500))
	_, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, StateGenerated, g.State())
}

func TestGenerator_SetTransmissionData_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TransmissionData)
	}{
		{"preparer number over 6 digits", func(d *TransmissionData) { d.PreparerNumber = "1234567" }},
		{"missing preparer number", func(d *TransmissionData) { d.PreparerNumber = "" }},
		{"bad tax year", func(d *TransmissionData) { d.TaxYear = 1999 }},
		{"bad sequence", func(d *TransmissionData) { d.SequenceNumber = 0 }},
		{"bad transmission type", func(d *TransmissionData) { d.TransmissionType = "X" }},
		{"missing transmitter name", func(d *TransmissionData) { d.TransmitterName = "" }},
		{"missing issuer name", func(d *TransmissionData) { d.Issuer.Name = "" }},
		{"bad NEQ", func(d *TransmissionData) { d.Issuer.NEQ = "123" }},
		{"missing issuer address", func(d *TransmissionData) { d.Issuer.AddressLine = "" }},
		{"bad issuer postal code", func(d *TransmissionData) { d.Issuer.PostalCode = "00000" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(zap.NewNop())
			data := testTransmissionData()
			tt.mutate(&data)

			assert.Error(t, g.SetTransmissionData(data))
			assert.Equal(t, StateIdle, g.State())
		})
	}
}

func TestGenerator_Generate_RefusesZeroSlips(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	require.NoError(t, g.SetTransmissionData(testTransmissionData()))

	result, err := g.Generate()
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No slips to include in the transmission")
	assert.Contains(t, g.Errors(), "No slips to include in the transmission")
}

func TestGenerator_Generate_RefusesWithoutTransmissionData(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	g.AddSlip(testSlip("1", 125, 5000, 4000, 500))

	result, err := g.Generate()
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transmission data has not been set")
}

func TestGenerator_Generate_RefusesOverSlipLimit(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	require.NoError(t, g.SetTransmissionData(testTransmissionData()))

	slips := make([]*entity.Slip, MaxSlipsPerFile+1)
	for i := range slips {
		slips[i] = testSlip(fmt.Sprintf("%d", i+1), 1, 10, 10, 0)
	}
	g.AddSlips(slips)

	result, err := g.Generate()
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the 1000-per-file limit")
}

func TestGenerator_Generate_EnumeratesAllErrors(t *testing.T) {
	g := NewGenerator(zap.NewNop())

	result, err := g.Generate()
	assert.Nil(t, result)
	require.Error(t, err)
	// Missing data and zero slips are reported together, not first-wins
	assert.Len(t, g.Errors(), 2)
}

func TestGenerator_DocumentShape(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	require.NoError(t, g.SetTransmissionData(testTransmissionData()))
	g.AddSlip(testSlip("1", 125, 5000, 4000, 500))
	g.AddSlip(testSlip("2", 230, 9500, 7600, 950))

	result, err := g.Generate()
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.SlipCount)
	assert.Equal(t, 355, result.Summary.TotalDays)
	assert.Equal(t, 11600.0, result.Summary.TotalBox12)
	assert.Equal(t, 1450.0, result.Summary.TotalBox13)
	assert.Equal(t, 10150.0, result.Summary.TotalBox14)

	var doc Document
	require.NoError(t, xml.Unmarshal(result.XML, &doc))

	assert.Equal(t, Namespace, doc.Xmlns)
	assert.Equal(t, "NP123456", doc.Entete.NoPreparateur)
	assert.Equal(t, "O", doc.Entete.TypeTransmission)
	assert.Equal(t, 2025, doc.Entete.AnneeImposition)
	assert.Equal(t, 1, doc.Entete.NoSequence)
	assert.Equal(t, "1234567890", doc.Groupe.Emetteur.NEQ)
	require.Len(t, doc.Groupe.Releves, 2)

	first := doc.Groupe.Releves[0]
	assert.Equal(t, "1", first.NoReleve)
	assert.Equal(t, "R", first.Code)
	assert.Equal(t, "046454286", first.Beneficiaire.NAS)
	assert.Equal(t, "2025-01-06", first.Periode.Debut)
	assert.Equal(t, "2025-06-20", first.Periode.Fin)
	assert.Equal(t, 125, first.Case10)
	assert.Equal(t, "5000.00", first.Case11)
	assert.Equal(t, "4000.00", first.Case12)
	assert.Equal(t, "500.00", first.Case13)
	assert.Equal(t, "3500.00", first.Case14)

	assert.Equal(t, 2, doc.Groupe.Sommaire.NbReleves)
	assert.Equal(t, 355, doc.Groupe.Sommaire.TotalJours)
	assert.Equal(t, "11600.00", doc.Groupe.Sommaire.TotalCase12)
	assert.Equal(t, "1450.00", doc.Groupe.Sommaire.TotalCase13)
	assert.Equal(t, "10150.00", doc.Groupe.Sommaire.TotalCase14)

	assert.True(t, strings.HasPrefix(string(result.XML), xml.Header))
}

func TestGenerator_OmitsZeroOptionalBoxes(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	require.NoError(t, g.SetTransmissionData(testTransmissionData()))

	// No reimbursement: box 13 is zero and must not appear on the wire
	s := testSlip("1", 100, 3000, 0, 0)
	g.AddSlip(s)

	result, err := g.Generate()
	require.NoError(t, err)

	out := string(result.XML)
	assert.NotContains(t, out, "<Case13>")
	assert.NotContains(t, out, "<Case14>")
	assert.Contains(t, out, "<Case12>0.00</Case12>")
}

func TestGenerator_Deterministic(t *testing.T) {
	build := func() []byte {
		g := NewGenerator(zap.NewNop())
		require.NoError(t, g.SetTransmissionData(testTransmissionData()))
		g.AddSlip(testSlip("1", 125, 5000, 4000, 500))
		g.AddSlip(testSlip("2", 230, 9500, 7600, 950))
		result, err := g.Generate()
		require.NoError(t, err)
		return result.XML
	}

	assert.Equal(t, build(), build(), "identical inputs must produce byte-identical XML")
}

func TestGenerator_AmendedSlipCarriesLineage(t *testing.T) {
	g := NewGenerator(zap.NewNop())
	data := testTransmissionData()
	data.TransmissionType = entity.TransmissionAmendment
	require.NoError(t, g.SetTransmissionData(data))

	s := testSlip("1", 125, 5200, 4200, 500)
	s.SlipType = entity.SlipAmended
	s.PreviousSlipNumber = "14"
	g.AddSlip(s)

	result, err := g.Generate()
	require.NoError(t, err)

	var doc Document
	require.NoError(t, xml.Unmarshal(result.XML, &doc))
	assert.Equal(t, "M", doc.Entete.TypeTransmission)
	assert.Equal(t, "M", doc.Groupe.Releves[0].Code)
	assert.Equal(t, "14", doc.Groupe.Releves[0].NoReleveAnterieur)
}
