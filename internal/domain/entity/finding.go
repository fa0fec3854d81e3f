package entity

import "fmt"

// FindingKind classifies a validation finding
type FindingKind string

const (
	FindingXMLMalformed    FindingKind = "XML_MALFORMED"
	FindingMissingElement  FindingKind = "MISSING_ELEMENT"
	FindingInvalidValue    FindingKind = "INVALID_VALUE"
	FindingInvalidFormat   FindingKind = "INVALID_FORMAT"
	FindingBusinessRule    FindingKind = "BUSINESS_RULE"
	FindingSummaryMismatch FindingKind = "SUMMARY_MISMATCH"
)

// Severity of a validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
)

// Finding is one validation observation: what rule tripped, how bad it is,
// and where in the document it was seen
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Location string      `json:"location"`
	Message  string      `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s at %s: %s", f.Severity, f.Kind, f.Location, f.Message)
}

// ValidationResult collects the findings of a single validation pass.
// It is ephemeral and never persisted.
type ValidationResult struct {
	Findings []Finding `json:"findings"`
}

// Add appends a finding
func (r *ValidationResult) Add(kind FindingKind, severity Severity, location, format string, args ...interface{}) {
	r.Findings = append(r.Findings, Finding{
		Kind:     kind,
		Severity: severity,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all findings from another result
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other != nil {
		r.Findings = append(r.Findings, other.Findings...)
	}
}

// IsClean returns true if the pass produced zero findings of any severity
func (r *ValidationResult) IsClean() bool {
	return len(r.Findings) == 0
}

// HasErrors returns true if any finding has error severity
func (r *ValidationResult) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ByKind returns the findings of the given kind
func (r *ValidationResult) ByKind(kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
