package entity

import "time"

// SlipType distinguishes original slips from corrections
type SlipType string

const (
	SlipOriginal  SlipType = "ORIGINAL"
	SlipAmended   SlipType = "AMENDED"
	SlipCancelled SlipType = "CANCELLED"
)

// Code returns the single-letter RL-24 slip type code
func (t SlipType) Code() string {
	switch t {
	case SlipAmended:
		return "M"
	case SlipCancelled:
		return "A"
	default:
		return "R"
	}
}

// IsValid returns true if the type is a known slip type
func (t SlipType) IsValid() bool {
	switch t {
	case SlipOriginal, SlipAmended, SlipCancelled:
		return true
	}
	return false
}

// Slip is one RL-24 form instance derived from exactly one eligibility
// record for one tax year. Immutable once its transmission leaves Draft;
// corrections are new Amended/Cancelled slips referencing SlipNumber.
type Slip struct {
	ID                 int64     `json:"id"`
	TransmissionID     int64     `json:"transmission_id"`
	EligibilityID      int64     `json:"eligibility_id"`
	SlipNumber         string    `json:"slip_number"`
	SlipType           SlipType  `json:"slip_type"`
	PreviousSlipNumber string    `json:"previous_slip_number,omitempty"`
	TaxYear            int       `json:"tax_year"`
	ChildFirstName     string    `json:"child_first_name"`
	ChildLastName      string    `json:"child_last_name"`
	ParentFirstName    string    `json:"parent_first_name"`
	ParentLastName     string    `json:"parent_last_name"`
	ParentSIN          string    `json:"parent_sin"`
	AddressLine        string    `json:"address_line"`
	City               string    `json:"city"`
	Province           string    `json:"province"`
	PostalCode         string    `json:"postal_code"`
	ServiceStart       time.Time `json:"service_start"`
	ServiceEnd         time.Time `json:"service_end"`

	// Numbered boxes from the RL-24 form. Box14 is always derived as
	// Box12 - Box13 at construction.
	Box10Days           int     `json:"box10_days"`
	Box11EligibleFees   float64 `json:"box11_eligible_fees"`
	Box12FeesPaid       float64 `json:"box12_fees_paid"`
	Box13FeesReimbursed float64 `json:"box13_fees_reimbursed"`
	Box14EligibleAmount float64 `json:"box14_eligible_amount"`

	CreatedAt time.Time `json:"created_at"`
}
