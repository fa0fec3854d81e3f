package entity

import "time"

// TransmissionType is the transmission-level RL-24 type code
type TransmissionType string

const (
	TransmissionOriginal     TransmissionType = "O"
	TransmissionAmendment    TransmissionType = "M"
	TransmissionCancellation TransmissionType = "A"
)

// IsValid returns true if the type is a known transmission type code
func (t TransmissionType) IsValid() bool {
	switch t {
	case TransmissionOriginal, TransmissionAmendment, TransmissionCancellation:
		return true
	}
	return false
}

// ProviderProfile is the issuer/transmitter identity captured from settings
// at generation time. It is snapshotted onto the Transmission row so later
// settings changes never retroactively alter a filed document.
type ProviderProfile struct {
	Name           string `json:"name"`
	NEQ            string `json:"neq"`
	AddressLine    string `json:"address_line"`
	City           string `json:"city"`
	Province       string `json:"province"`
	PostalCode     string `json:"postal_code"`
	PreparerNumber string `json:"preparer_number"`
}

// Transmission is one batch file for one (tax year, sequence number) pair.
// It owns its slips by composition; slips remain addressable by slip number
// for amendment lineage after the transmission is finalized.
type Transmission struct {
	ID               int64            `json:"id"`
	UUID             string           `json:"uuid"`
	TaxYear          int              `json:"tax_year"`
	SequenceNumber   int              `json:"sequence_number"`
	Filename         string           `json:"filename"`
	TransmissionType TransmissionType `json:"transmission_type"`
	Status           string           `json:"status"`
	Provider         ProviderProfile  `json:"provider"`
	SlipCount        int              `json:"slip_count"`
	TotalDays        int              `json:"total_days"`
	TotalBox11       float64          `json:"total_box11"`
	TotalBox12       float64          `json:"total_box12"`
	TotalBox13       float64          `json:"total_box13"`
	TotalBox14       float64          `json:"total_box14"`
	ValidationClean  bool             `json:"validation_clean"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	Slips []*Slip `json:"slips,omitempty"`
}
