package entity

// Summary holds the transmission-level totals reported in the Sommaire
// element and on the paper summary. Each total is summed independently per
// box; TotalBox14 is additionally cross-checked against
// TotalBox12 - TotalBox13 by the validator.
type Summary struct {
	SlipCount  int     `json:"slip_count"`
	TotalDays  int     `json:"total_days"`
	TotalBox11 float64 `json:"total_box11"`
	TotalBox12 float64 `json:"total_box12"`
	TotalBox13 float64 `json:"total_box13"`
	TotalBox14 float64 `json:"total_box14"`
}
