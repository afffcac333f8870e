package cte

import (
	"regexp"
	"strings"
)

var (
	plateStrip    = regexp.MustCompile(`[^A-Z0-9]`)
	plateLegacy   = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	plateMercosul = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
)

// SanitizePlate uppercases the candidate and strips every character
// that is not a letter or digit.
func SanitizePlate(raw string) string {
	return plateStrip.ReplaceAllString(strings.ToUpper(raw), "")
}

// ValidPlate reports whether plate matches the legacy (ABC1234) or
// Mercosul (ABC1D23) shape. Validation is shape-only; there is no
// checksum or registry lookup.
func ValidPlate(plate string) bool {
	return plateLegacy.MatchString(plate) || plateMercosul.MatchString(plate)
}

// NormalizePlate sanitizes raw and validates the result.
func NormalizePlate(raw string) (string, bool) {
	plate := SanitizePlate(raw)
	if !ValidPlate(plate) {
		return "", false
	}
	return plate, true
}
