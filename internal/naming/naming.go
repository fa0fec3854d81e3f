// Package naming derives and parses the fixed-width transmission filename
// AAPPPPPPSSS.xml (2-digit year, 6-digit preparer number, 3-digit
// sequence). The receiving tax authority parses this name, so the format
// is bit-exact.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
)

// MaxSequence is the highest sequence number the 3-digit field can carry
const MaxSequence = 999

var (
	filenameRegex = regexp.MustCompile(`^(\d{2})(\d{6})(\d{3})\.xml$`)
	preparerRegex = regexp.MustCompile(`^\d{1,6}$`)
)

// ParsedFilename is the decomposition of a transmission filename
type ParsedFilename struct {
	YearSuffix     int    // tax year mod 100
	PreparerNumber string // zero-padded to 6 digits
	Sequence       int
}

// GenerateFilename derives the filename for one transmission. A preparer
// number over 6 digits is a configuration error and is rejected, never
// silently truncated.
func GenerateFilename(taxYear int, preparerNumber string, sequence int) (string, error) {
	if err := ValidatePreparerNumber(preparerNumber); err != nil {
		return "", err
	}
	if sequence < 1 || sequence > MaxSequence {
		return "", fmt.Errorf("sequence number %d out of range 1-%d", sequence, MaxSequence)
	}

	prep, _ := strconv.Atoi(preparerNumber)
	return fmt.Sprintf("%02d%06d%03d.xml", taxYear%100, prep, sequence), nil
}

// ValidatePreparerNumber checks the configured preparer number: 1 to 6
// ASCII digits
func ValidatePreparerNumber(preparerNumber string) error {
	if !preparerRegex.MatchString(preparerNumber) {
		return fmt.Errorf("preparer number must be 1 to 6 digits: %q", preparerNumber)
	}
	return nil
}

// ParseFilename decomposes a transmission filename, rejecting anything
// that is not exactly 11 digits followed by ".xml"
func ParseFilename(name string) (*ParsedFilename, error) {
	m := filenameRegex.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("filename %q does not match the AAPPPPPPSSS.xml format", name)
	}

	year, _ := strconv.Atoi(m[1])
	sequence, _ := strconv.Atoi(m[3])
	if sequence == 0 {
		return nil, fmt.Errorf("filename %q carries sequence 000", name)
	}

	return &ParsedFilename{
		YearSuffix:     year,
		PreparerNumber: m[2],
		Sequence:       sequence,
	}, nil
}

// ValidateFilename reports whether a name is a well-formed transmission filename
func ValidateFilename(name string) error {
	_, err := ParseFilename(name)
	return err
}
