package rl24

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/validate"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/naming"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/summary"
)

// MaxSlipsPerFile is the protocol limit on slips in one transmission file
const MaxSlipsPerFile = 1000

// GeneratorState tracks the assembly progress of one batch
type GeneratorState string

const (
	StateIdle                GeneratorState = "IDLE"
	StateTransmissionDataSet GeneratorState = "TRANSMISSION_DATA_SET"
	StateGenerated           GeneratorState = "GENERATED"
)

// TransmissionData is everything the header and issuer group need
type TransmissionData struct {
	TaxYear          int
	SequenceNumber   int
	TransmissionType entity.TransmissionType
	PreparerNumber   string
	TransmitterName  string
	Issuer           entity.ProviderProfile
}

// GenerateResult is the product of a successful generation
type GenerateResult struct {
	XML      []byte
	Summary  *entity.Summary
	Document *Document
}

// Generator assembles one transmission document. It is a single-batch
// state machine: set the transmission data, add slips, generate. Identical
// data and an identical ordered slip list always produce byte-identical
// XML. A Generator is not safe for concurrent use.
type Generator struct {
	state  GeneratorState
	data   TransmissionData
	slips  []*entity.Slip
	errors []string
	calc   *summary.Calculator
	logger *zap.Logger
}

// NewGenerator creates a generator in the Idle state
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{
		state:  StateIdle,
		calc:   summary.NewCalculator(),
		logger: logger,
	}
}

// State returns the current generator state
func (g *Generator) State() GeneratorState {
	return g.state
}

// Errors returns the problems recorded by the last Generate call
func (g *Generator) Errors() []string {
	return g.errors
}

// SetTransmissionData validates and stores the header and issuer identity.
// It fails if any required transmitter or issuer field is absent or
// malformed; the preparer number over 6 digits is a configuration error.
func (g *Generator) SetTransmissionData(data TransmissionData) error {
	var problems []string

	if data.TaxYear < 2000 || data.TaxYear > 2099 {
		problems = append(problems, fmt.Sprintf("tax year %d is out of range", data.TaxYear))
	}
	if data.SequenceNumber < 1 || data.SequenceNumber > naming.MaxSequence {
		problems = append(problems, fmt.Sprintf("sequence number %d is out of range 1-%d", data.SequenceNumber, naming.MaxSequence))
	}
	if !data.TransmissionType.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown transmission type %q", string(data.TransmissionType)))
	}
	if err := naming.ValidatePreparerNumber(data.PreparerNumber); err != nil {
		problems = append(problems, err.Error())
	}
	if data.TransmitterName == "" {
		problems = append(problems, "transmitter name is required")
	}
	if data.Issuer.Name == "" {
		problems = append(problems, "issuer name is required")
	}
	if err := validate.ValidateNEQ(data.Issuer.NEQ); err != nil {
		problems = append(problems, err.Error())
	}
	if data.Issuer.AddressLine == "" || data.Issuer.City == "" {
		problems = append(problems, "issuer address is required")
	}
	if err := validate.ValidatePostalCode(data.Issuer.PostalCode); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid transmission data: %s", strings.Join(problems, "; "))
	}

	g.data = data
	g.state = StateTransmissionDataSet
	return nil
}

// AddSlip appends one pre-built slip to the batch
func (g *Generator) AddSlip(s *entity.Slip) {
	g.slips = append(g.slips, s)
}

// AddSlips appends pre-built slips in order
func (g *Generator) AddSlips(slips []*entity.Slip) {
	g.slips = append(g.slips, slips...)
}

// Generate assembles the document. It never panics; every failure
// condition is recorded in Errors() and returned as one error so callers
// can present exact remediation. Nothing is written anywhere on failure.
func (g *Generator) Generate() (*GenerateResult, error) {
	g.errors = nil

	if g.state == StateIdle {
		g.errors = append(g.errors, "transmission data has not been set")
	}
	if len(g.slips) == 0 {
		g.errors = append(g.errors, "No slips to include in the transmission")
	}
	if len(g.slips) > MaxSlipsPerFile {
		g.errors = append(g.errors, fmt.Sprintf("slip count %d exceeds the %d-per-file limit", len(g.slips), MaxSlipsPerFile))
	}
	for _, s := range g.slips {
		if s.SlipNumber == "" {
			g.errors = append(g.errors, fmt.Sprintf("slip for eligibility record %d has no slip number", s.EligibilityID))
		}
		if s.ParentSIN == "" {
			g.errors = append(g.errors, fmt.Sprintf("slip %s has no recipient SIN", s.SlipNumber))
		}
	}

	if len(g.errors) > 0 {
		if g.logger != nil {
			g.logger.Warn("Transmission generation refused",
				zap.Int("slip_count", len(g.slips)),
				zap.Strings("errors", g.errors))
		}
		return nil, fmt.Errorf("cannot generate transmission: %s", strings.Join(g.errors, "; "))
	}

	doc := g.buildDocument()
	sum := g.calc.Calculate(g.slips)

	out, err := marshalDocument(doc)
	if err != nil {
		g.errors = append(g.errors, err.Error())
		return nil, fmt.Errorf("cannot generate transmission: %w", err)
	}

	g.state = StateGenerated
	if g.logger != nil {
		g.logger.Info("Transmission document generated",
			zap.Int("tax_year", g.data.TaxYear),
			zap.Int("sequence", g.data.SequenceNumber),
			zap.Int("slip_count", sum.SlipCount))
	}

	return &GenerateResult{XML: out, Summary: sum, Document: doc}, nil
}

func (g *Generator) buildDocument() *Document {
	doc := &Document{
		Xmlns: Namespace,
		Entete: Entete{
			NoPreparateur:    FormatPreparer(g.data.PreparerNumber),
			TypeTransmission: string(g.data.TransmissionType),
			AnneeImposition:  g.data.TaxYear,
			NoSequence:       g.data.SequenceNumber,
			NomTransmetteur:  g.data.TransmitterName,
		},
		Groupe: Groupe{
			Emetteur: Emetteur{
				NEQ: strings.ReplaceAll(g.data.Issuer.NEQ, " ", ""),
				Nom: g.data.Issuer.Name,
				Adresse: Adresse{
					Ligne1:     g.data.Issuer.AddressLine,
					Ville:      g.data.Issuer.City,
					Province:   g.data.Issuer.Province,
					CodePostal: g.data.Issuer.PostalCode,
				},
			},
		},
	}

	for _, s := range g.slips {
		r := Releve{
			NoReleve:          s.SlipNumber,
			Code:              s.SlipType.Code(),
			NoReleveAnterieur: s.PreviousSlipNumber,
			Enfant:            Personne{Prenom: s.ChildFirstName, Nom: s.ChildLastName},
			Beneficiaire:      Beneficiaire{Prenom: s.ParentFirstName, Nom: s.ParentLastName, NAS: s.ParentSIN},
			Adresse: Adresse{
				Ligne1:     s.AddressLine,
				Ville:      s.City,
				Province:   s.Province,
				CodePostal: s.PostalCode,
			},
			Periode: Periode{
				Debut: s.ServiceStart.Format(DateLayout),
				Fin:   s.ServiceEnd.Format(DateLayout),
			},
			Case10: s.Box10Days,
			Case11: FormatAmount(s.Box11EligibleFees),
			Case12: FormatAmount(s.Box12FeesPaid),
		}

		// Boxes 13 and 14 are optional on the wire and only emitted
		// when non-zero
		if !entity.SameAmount(s.Box13FeesReimbursed, 0) {
			r.Case13 = FormatAmount(s.Box13FeesReimbursed)
		}
		if !entity.SameAmount(s.Box14EligibleAmount, 0) {
			r.Case14 = FormatAmount(s.Box14EligibleAmount)
		}

		doc.Groupe.Releves = append(doc.Groupe.Releves, r)
	}

	sum := g.calc.Calculate(g.slips)
	doc.Groupe.Sommaire = Sommaire{
		NbReleves:   sum.SlipCount,
		TotalJours:  sum.TotalDays,
		TotalCase11: FormatAmount(sum.TotalBox11),
		TotalCase12: FormatAmount(sum.TotalBox12),
		TotalCase13: FormatAmount(sum.TotalBox13),
		TotalCase14: FormatAmount(sum.TotalBox14),
	}

	return doc
}

func marshalDocument(doc *Document) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transmission document: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
