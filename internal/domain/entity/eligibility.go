package entity

import "time"

// EligibilityStatus represents the review status of an eligibility record
type EligibilityStatus string

const (
	EligibilityPending    EligibilityStatus = "PENDING"
	EligibilityApproved   EligibilityStatus = "APPROVED"
	EligibilityRejected   EligibilityStatus = "REJECTED"
	EligibilityIncomplete EligibilityStatus = "INCOMPLETE"
)

// IsValid returns true if the status is a known review status
func (s EligibilityStatus) IsValid() bool {
	switch s {
	case EligibilityPending, EligibilityApproved, EligibilityRejected, EligibilityIncomplete:
		return true
	}
	return false
}

// Deletable returns true if a record in this status may be deleted.
// Approved and Rejected records are part of the review trail and may not.
func (s EligibilityStatus) Deletable() bool {
	return s == EligibilityPending || s == EligibilityIncomplete
}

// EligibilityRecord is one child/parent/service-period tuple approved (or
// pending approval) for the tax credit in one tax year
type EligibilityRecord struct {
	ID               int64             `json:"id"`
	TaxYear          int               `json:"tax_year"`
	ChildFirstName   string            `json:"child_first_name"`
	ChildLastName    string            `json:"child_last_name"`
	ChildDateOfBirth *time.Time        `json:"child_date_of_birth,omitempty"`
	ParentFirstName  string            `json:"parent_first_name"`
	ParentLastName   string            `json:"parent_last_name"`
	ParentSIN        string            `json:"parent_sin"`
	AddressLine      string            `json:"address_line"`
	City             string            `json:"city"`
	Province         string            `json:"province"`
	PostalCode       string            `json:"postal_code"`
	CanadianResident bool              `json:"canadian_resident"`
	ServiceStart     time.Time         `json:"service_start"`
	ServiceEnd       time.Time         `json:"service_end"`
	DaysOfService    int               `json:"days_of_service"`
	EligibleFees     float64           `json:"eligible_fees"`
	FeesPaid         float64           `json:"fees_paid"`
	FeesReimbursed   float64           `json:"fees_reimbursed"`
	Status           EligibilityStatus `json:"status"`
	TransmissionID   *int64            `json:"transmission_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Slipped returns true if the record has already been included in a transmission
func (r *EligibilityRecord) Slipped() bool {
	return r.TransmissionID != nil
}
