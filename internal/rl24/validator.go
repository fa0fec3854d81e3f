package rl24

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/validate"
)

var preparerIDRegex = regexp.MustCompile(`^NP\d{6}$`)

// largeAmountThreshold flags amounts that are legal but unusual enough to
// warrant a second look before submission
const largeAmountThreshold = 99999.99

// Validator re-checks a transmission document: well-formedness, mandatory
// elements, field formats, business rules and summary reconciliation. It
// works on strings, files or an already parsed Document, and accepts
// documents this process did not generate.
//
// In strict mode advisory findings are reported as errors; otherwise they
// are downgraded to warnings or notices.
type Validator struct {
	strict bool
	logger *zap.Logger
}

// NewValidator creates a validator
func NewValidator(strict bool, logger *zap.Logger) *Validator {
	return &Validator{strict: strict, logger: logger}
}

// ValidateBytes parses and validates a serialized document
func (v *Validator) ValidateBytes(data []byte) *entity.ValidationResult {
	result := &entity.ValidationResult{}

	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		result.Add(entity.FindingXMLMalformed, entity.SeverityError, "document",
			"document is not well-formed XML: %v", err)
		return result
	}

	v.validateDocument(&doc, result)
	return result
}

// ValidateString parses and validates a serialized document
func (v *Validator) ValidateString(data string) *entity.ValidationResult {
	return v.ValidateBytes([]byte(data))
}

// ValidateFile reads, parses and validates a document file
func (v *Validator) ValidateFile(path string) *entity.ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		result := &entity.ValidationResult{}
		result.Add(entity.FindingXMLMalformed, entity.SeverityError, path,
			"cannot read file: %v", err)
		return result
	}
	return v.ValidateBytes(data)
}

// ValidateDocument validates an already built document tree
func (v *Validator) ValidateDocument(doc *Document) *entity.ValidationResult {
	result := &entity.ValidationResult{}
	v.validateDocument(doc, result)
	return result
}

func (v *Validator) validateDocument(doc *Document, result *entity.ValidationResult) {
	if doc.Xmlns != Namespace {
		v.advisory(result, entity.FindingInvalidValue, entity.SeverityWarning, "Transmission",
			"unexpected namespace %q", doc.Xmlns)
	}

	v.validateEntete(&doc.Entete, result)
	v.validateEmetteur(&doc.Groupe.Emetteur, result)
	v.validateReleves(doc.Groupe.Releves, result)
	v.validateSommaire(doc, result)

	if v.logger != nil {
		v.logger.Debug("Transmission document validated",
			zap.Int("findings", len(result.Findings)),
			zap.Bool("strict", v.strict))
	}
}

func (v *Validator) validateEntete(e *Entete, result *entity.ValidationResult) {
	if e.NoPreparateur == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Entete/NoPreparateur",
			"preparer identifier is missing")
	} else if !preparerIDRegex.MatchString(e.NoPreparateur) {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, "Entete/NoPreparateur",
			"preparer identifier %q must be NP followed by 6 digits", e.NoPreparateur)
	}

	switch e.TypeTransmission {
	case "":
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Entete/TypeTransmission",
			"transmission type is missing")
	case string(entity.TransmissionOriginal), string(entity.TransmissionAmendment), string(entity.TransmissionCancellation):
	default:
		result.Add(entity.FindingInvalidValue, entity.SeverityError, "Entete/TypeTransmission",
			"transmission type %q is not one of O, M, A", e.TypeTransmission)
	}

	if e.AnneeImposition == 0 {
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Entete/AnneeImposition",
			"tax year is missing")
	} else if e.AnneeImposition < 2000 || e.AnneeImposition > 2099 {
		result.Add(entity.FindingInvalidValue, entity.SeverityError, "Entete/AnneeImposition",
			"tax year %d is out of range", e.AnneeImposition)
	}

	if e.NoSequence < 1 || e.NoSequence > 999 {
		result.Add(entity.FindingInvalidValue, entity.SeverityError, "Entete/NoSequence",
			"sequence number %d is out of range 1-999", e.NoSequence)
	}

	if e.NomTransmetteur == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Entete/NomTransmetteur",
			"transmitter name is missing")
	}
}

func (v *Validator) validateEmetteur(e *Emetteur, result *entity.ValidationResult) {
	if e.Nom == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Groupe/Emetteur/Nom",
			"issuer name is missing")
	}
	if e.NEQ == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Groupe/Emetteur/NEQ",
			"issuer NEQ is missing")
	} else if err := validate.ValidateNEQ(e.NEQ); err != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, "Groupe/Emetteur/NEQ", "%v", err)
	}
	v.validateAdresse(&e.Adresse, "Groupe/Emetteur/Adresse", result)
}

func (v *Validator) validateAdresse(a *Adresse, location string, result *entity.ValidationResult) {
	if a.Ligne1 == "" || a.Ville == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, location,
			"address line and city are required")
	}
	if a.CodePostal == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, location+"/CodePostal",
			"postal code is missing")
	} else if err := validate.ValidatePostalCode(a.CodePostal); err != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, location+"/CodePostal", "%v", err)
	}
}

func (v *Validator) validateReleves(releves []Releve, result *entity.ValidationResult) {
	if len(releves) == 0 {
		result.Add(entity.FindingMissingElement, entity.SeverityError, "Groupe",
			"transmission contains no slips")
		return
	}
	if len(releves) > MaxSlipsPerFile {
		result.Add(entity.FindingBusinessRule, entity.SeverityError, "Groupe",
			"slip count %d exceeds the %d-per-file limit", len(releves), MaxSlipsPerFile)
	}

	seen := make(map[string]bool, len(releves))
	for i := range releves {
		r := &releves[i]
		loc := fmt.Sprintf("Groupe/Releve[%s]", r.NoReleve)

		if r.NoReleve == "" {
			loc = fmt.Sprintf("Groupe/Releve[#%d]", i+1)
			result.Add(entity.FindingMissingElement, entity.SeverityError, loc,
				"slip number is missing")
		} else if seen[r.NoReleve] {
			result.Add(entity.FindingBusinessRule, entity.SeverityError, loc,
				"slip number %s appears more than once", r.NoReleve)
		}
		seen[r.NoReleve] = true

		v.validateReleve(r, loc, result)
	}
}

func (v *Validator) validateReleve(r *Releve, loc string, result *entity.ValidationResult) {
	switch r.Code {
	case "R":
	case "M", "A":
		if r.NoReleveAnterieur == "" {
			result.Add(entity.FindingBusinessRule, entity.SeverityError, loc,
				"slip of type %s must reference the slip it supersedes", r.Code)
		}
	case "":
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc,
			"slip type code is missing")
	default:
		result.Add(entity.FindingInvalidValue, entity.SeverityError, loc,
			"slip type code %q is not one of R, M, A", r.Code)
	}

	if r.Enfant.Prenom == "" || r.Enfant.Nom == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc+"/Enfant",
			"child name is missing")
	}
	if r.Beneficiaire.Prenom == "" || r.Beneficiaire.Nom == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc+"/Beneficiaire",
			"recipient name is missing")
	}
	if r.Beneficiaire.NAS == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc+"/Beneficiaire/NAS",
			"recipient SIN is missing")
	} else if err := validate.ValidateSIN(r.Beneficiaire.NAS); err != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, loc+"/Beneficiaire/NAS", "%v", err)
	}

	v.validateAdresse(&r.Adresse, loc+"/Adresse", result)
	v.validatePeriode(&r.Periode, loc+"/Periode", result)

	if r.Case10 < 0 {
		result.Add(entity.FindingInvalidValue, entity.SeverityError, loc+"/Case10",
			"days of service %d must not be negative", r.Case10)
	}

	box11, ok11 := v.validateAmount(r.Case11, true, loc+"/Case11", result)
	box12, ok12 := v.validateAmount(r.Case12, true, loc+"/Case12", result)
	box13, ok13 := v.validateAmount(r.Case13, false, loc+"/Case13", result)
	box14, ok14 := v.validateAmount(r.Case14, false, loc+"/Case14", result)

	if ok12 && ok13 && ok14 {
		derived := entity.RoundAmount(box12 - box13)
		if !entity.SameAmount(derived, box14) {
			result.Add(entity.FindingBusinessRule, entity.SeverityError, loc,
				"box 14 is %.2f but box 12 minus box 13 gives %.2f", box14, derived)
		}
	}

	if r.Code == "A" && ok12 && (r.Case10 != 0 || !entity.SameAmount(box12, 0)) {
		result.Add(entity.FindingBusinessRule, entity.SeverityError, loc,
			"cancelled slip must carry zero amounts")
	}

	if r.Code == "R" && ok12 && entity.SameAmount(box12, 0) {
		v.advisory(result, entity.FindingInvalidValue, entity.SeverityWarning, loc+"/Case12",
			"original slip reports zero fees paid")
	}
	if (ok11 && box11 > largeAmountThreshold) || (ok12 && box12 > largeAmountThreshold) {
		v.advisory(result, entity.FindingInvalidValue, entity.SeverityNotice, loc,
			"amount is unusually large")
	}
}

func (v *Validator) validatePeriode(p *Periode, loc string, result *entity.ValidationResult) {
	start, errStart := time.Parse(DateLayout, p.Debut)
	if p.Debut == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc+"/Debut",
			"service period start is missing")
	} else if errStart != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, loc+"/Debut",
			"service period start %q is not a valid date", p.Debut)
	}

	end, errEnd := time.Parse(DateLayout, p.Fin)
	if p.Fin == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc+"/Fin",
			"service period end is missing")
	} else if errEnd != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, loc+"/Fin",
			"service period end %q is not a valid date", p.Fin)
	}

	if errStart == nil && errEnd == nil && p.Debut != "" && p.Fin != "" {
		if err := validate.ValidateDateRange(start, end); err != nil {
			result.Add(entity.FindingBusinessRule, entity.SeverityError, loc, "%v", err)
		}
	}
}

// validateAmount parses a box amount. Optional boxes may be absent, which
// reads as zero.
func (v *Validator) validateAmount(raw string, required bool, loc string, result *entity.ValidationResult) (float64, bool) {
	if raw == "" {
		if required {
			result.Add(entity.FindingMissingElement, entity.SeverityError, loc, "amount is missing")
			return 0, false
		}
		return 0, true
	}

	amount, err := ParseAmount(raw)
	if err != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, loc, "%v", err)
		return 0, false
	}
	if amount < 0 {
		result.Add(entity.FindingInvalidValue, entity.SeverityError, loc,
			"amount %.2f must not be negative", amount)
		return amount, false
	}
	return amount, true
}

// validateSommaire recomputes the totals from the slip elements and
// cross-checks every figure the summary reports
func (v *Validator) validateSommaire(doc *Document, result *entity.ValidationResult) {
	if len(doc.Groupe.Releves) == 0 {
		return
	}

	s := &doc.Groupe.Sommaire

	var days int
	var total11, total12, total13, total14 float64
	for _, r := range doc.Groupe.Releves {
		days += r.Case10
		total11 += parseOrZero(r.Case11)
		total12 += parseOrZero(r.Case12)
		total13 += parseOrZero(r.Case13)
		total14 += parseOrZero(r.Case14)
	}
	total11 = entity.RoundAmount(total11)
	total12 = entity.RoundAmount(total12)
	total13 = entity.RoundAmount(total13)
	total14 = entity.RoundAmount(total14)

	if s.NbReleves != len(doc.Groupe.Releves) {
		result.Add(entity.FindingSummaryMismatch, entity.SeverityError, "Groupe/Sommaire/NbReleves",
			"summary reports %d slips but the transmission carries %d", s.NbReleves, len(doc.Groupe.Releves))
	}
	if s.TotalJours != days {
		result.Add(entity.FindingSummaryMismatch, entity.SeverityError, "Groupe/Sommaire/TotalJours",
			"summary reports %d days but the slips total %d", s.TotalJours, days)
	}

	v.checkTotal(s.TotalCase11, total11, "Groupe/Sommaire/TotalCase11", result)
	v.checkTotal(s.TotalCase12, total12, "Groupe/Sommaire/TotalCase12", result)
	v.checkTotal(s.TotalCase13, total13, "Groupe/Sommaire/TotalCase13", result)
	v.checkTotal(s.TotalCase14, total14, "Groupe/Sommaire/TotalCase14", result)

	// Independent reconciliation of the box 14 total against 12 and 13
	if reported14, err := ParseAmount(s.TotalCase14); err == nil {
		if reported12, err12 := ParseAmount(s.TotalCase12); err12 == nil {
			if reported13, err13 := ParseAmount(s.TotalCase13); err13 == nil {
				derived := entity.RoundAmount(reported12 - reported13)
				if !entity.SameAmount(derived, reported14) {
					result.Add(entity.FindingSummaryMismatch, entity.SeverityError, "Groupe/Sommaire",
						"total box 14 is %.2f but box 12 minus box 13 gives %.2f", reported14, derived)
				}
			}
		}
	}
}

func (v *Validator) checkTotal(raw string, derived float64, loc string, result *entity.ValidationResult) {
	if raw == "" {
		result.Add(entity.FindingMissingElement, entity.SeverityError, loc, "summary total is missing")
		return
	}
	reported, err := ParseAmount(raw)
	if err != nil {
		result.Add(entity.FindingInvalidFormat, entity.SeverityError, loc, "%v", err)
		return
	}
	if !entity.SameAmount(reported, derived) {
		result.Add(entity.FindingSummaryMismatch, entity.SeverityError, loc,
			"summary reports %.2f but the slips total %.2f", reported, derived)
	}
}

// advisory records a finding whose severity depends on strict mode:
// strict validation treats every advisory as an error
func (v *Validator) advisory(result *entity.ValidationResult, kind entity.FindingKind, severity entity.Severity, loc, format string, args ...interface{}) {
	if v.strict {
		severity = entity.SeverityError
	}
	result.Add(kind, severity, loc, format, args...)
}

func parseOrZero(raw string) float64 {
	if raw == "" {
		return 0
	}
	amount, err := ParseAmount(raw)
	if err != nil {
		return 0
	}
	return amount
}
