// Package rl24 implements the RL-24 transmission document: the fixed XML
// shape the tax authority ingests, a generator that assembles it from
// built slips, and a validator that re-checks generated or externally
// supplied files. The validator never depends on the generator, so
// previously filed documents can be re-checked on their own.
package rl24

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
)

// Namespace is the transmission document namespace
const Namespace = "http://www.revenuquebec.ca/rl24/transmission"

// DateLayout is the wire format for service period dates
const DateLayout = "2006-01-02"

// Document is the root Transmission element
type Document struct {
	XMLName xml.Name `xml:"Transmission"`
	Xmlns   string   `xml:"xmlns,attr"`
	Entete  Entete   `xml:"Entete"`
	Groupe  Groupe   `xml:"Groupe"`
}

// Entete carries the transmitter identity and batch coordinates
type Entete struct {
	NoPreparateur    string `xml:"NoPreparateur"`    // "NP" + 6 digits
	TypeTransmission string `xml:"TypeTransmission"` // O, M or A
	AnneeImposition  int    `xml:"AnneeImposition"`
	NoSequence       int    `xml:"NoSequence"`
	NomTransmetteur  string `xml:"NomTransmetteur"`
}

// Groupe wraps the issuer, the slips and the trailing summary
type Groupe struct {
	Emetteur Emetteur `xml:"Emetteur"`
	Releves  []Releve `xml:"Releve"`
	Sommaire Sommaire `xml:"Sommaire"`
}

// Emetteur is the issuing childcare provider
type Emetteur struct {
	NEQ     string  `xml:"NEQ"`
	Nom     string  `xml:"Nom"`
	Adresse Adresse `xml:"Adresse"`
}

// Adresse is a civic address block
type Adresse struct {
	Ligne1     string `xml:"Ligne1"`
	Ville      string `xml:"Ville"`
	Province   string `xml:"Province"`
	CodePostal string `xml:"CodePostal"`
}

// Releve is one slip element
type Releve struct {
	NoReleve          string       `xml:"NoReleve"`
	Code              string       `xml:"Code"` // R original, M amended, A cancelled
	NoReleveAnterieur string       `xml:"NoReleveAnterieur,omitempty"`
	Enfant            Personne     `xml:"Enfant"`
	Beneficiaire      Beneficiaire `xml:"Beneficiaire"`
	Adresse           Adresse      `xml:"Adresse"`
	Periode           Periode      `xml:"Periode"`
	Case10            int          `xml:"Case10"`
	Case11            string       `xml:"Case11"`
	Case12            string       `xml:"Case12"`
	Case13            string       `xml:"Case13,omitempty"`
	Case14            string       `xml:"Case14,omitempty"`
}

// Personne is a name pair
type Personne struct {
	Prenom string `xml:"Prenom"`
	Nom    string `xml:"Nom"`
}

// Beneficiaire is the parent receiving the slip
type Beneficiaire struct {
	Prenom string `xml:"Prenom"`
	Nom    string `xml:"Nom"`
	NAS    string `xml:"NAS"`
}

// Periode is the service period
type Periode struct {
	Debut string `xml:"Debut"`
	Fin   string `xml:"Fin"`
}

// Sommaire carries the transmission-level totals
type Sommaire struct {
	NbReleves   int    `xml:"NbReleves"`
	TotalJours  int    `xml:"TotalJours"`
	TotalCase11 string `xml:"TotalCase11"`
	TotalCase12 string `xml:"TotalCase12"`
	TotalCase13 string `xml:"TotalCase13"`
	TotalCase14 string `xml:"TotalCase14"`
}

// FormatAmount renders a box amount the way the document carries it
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", entity.RoundAmount(v))
}

// ParseAmount reads a box amount off the wire
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return entity.RoundAmount(v), nil
}

// FormatPreparer renders the Entete preparer identifier ("NP" + 6 digits)
func FormatPreparer(preparerNumber string) string {
	n, _ := strconv.Atoi(preparerNumber)
	return fmt.Sprintf("NP%06d", n)
}
