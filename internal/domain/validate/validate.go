// Package validate holds the pure field validators shared by the slip
// builder, the XML validator, and the configuration layer. All checks are
// side-effect free.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	digitsOnly      = regexp.MustCompile(`^\d+$`)
	postalCodeRegex = regexp.MustCompile(`^[A-Za-z]\d[A-Za-z] ?\d[A-Za-z]\d$`)
)

// ValidateSIN validates a Canadian Social Insurance Number: exactly 9 ASCII
// digits passing the Luhn checksum.
func ValidateSIN(sin string) error {
	if len(sin) != 9 || !digitsOnly.MatchString(sin) {
		return fmt.Errorf("SIN must be exactly 9 digits: %q", sin)
	}
	// All zeros sums to 0 and would pass the checksum
	if sin == "000000000" {
		return fmt.Errorf("SIN failed checksum validation: %q", sin)
	}
	if !luhnValid(sin) {
		return fmt.Errorf("SIN failed checksum validation: %q", sin)
	}
	return nil
}

// luhnValid runs the Luhn checksum: double every second digit from the
// left, reduce two-digit products to their digit sum, total mod 10 == 0.
func luhnValid(s string) bool {
	sum := 0
	for i, r := range s {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}

// ValidateNEQ validates a Quebec business registration number: exactly 10
// digits. Spaces are permitted as separators and stripped before checking.
func ValidateNEQ(neq string) error {
	stripped := strings.ReplaceAll(neq, " ", "")
	if len(stripped) != 10 || !digitsOnly.MatchString(stripped) {
		return fmt.Errorf("NEQ must be exactly 10 digits: %q", neq)
	}
	return nil
}

// ValidatePostalCode validates the Canadian A#A #A# format, space optional
func ValidatePostalCode(code string) error {
	if !postalCodeRegex.MatchString(code) {
		return fmt.Errorf("invalid postal code format: %q", code)
	}
	return nil
}

// ValidateDateRange validates that start is not after end
func ValidateDateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("service period start %s is after end %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return nil
}

// ValidateAmount validates a box amount: non-negative, finite, at most two
// decimal places of significance.
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}
	return nil
}

// FormatNEQ groups a 10-digit NEQ as "#### ### ###" for the paper summary
func FormatNEQ(neq string) string {
	stripped := strings.ReplaceAll(neq, " ", "")
	if len(stripped) != 10 {
		return neq
	}
	return stripped[0:4] + " " + stripped[4:7] + " " + stripped[7:10]
}

// MaskSIN hides all but the last three digits of a SIN for display
func MaskSIN(sin string) string {
	if len(sin) != 9 {
		return sin
	}
	return "*** *** " + sin[6:]
}
