package model

import (
	"regexp"
	"strings"
)

// Shift is a delivery shift: AM (morning) or SD (afternoon)
type Shift string

const (
	ShiftNone Shift = ""
	ShiftAM   Shift = "AM"
	ShiftSD   Shift = "SD"
)

// NotDefined is how an absent shift is displayed to operators
const NotDefined = "N/D"

// IsValid reports whether the shift is AM or SD
func (s Shift) IsValid() bool {
	return s == ShiftAM || s == ShiftSD
}

// Display renders the shift for presentation, using N/D when absent
func (s Shift) Display() string {
	if s == ShiftNone {
		return NotDefined
	}
	return string(s)
}

// ParseShift reads a shift cell. Anything other than AM or SD (including the
// legacy "N/D" sentinel) is treated as absent.
func ParseShift(raw string) Shift {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "AM":
		return ShiftAM
	case "SD":
		return ShiftSD
	default:
		return ShiftNone
	}
}

var floatSuffix = regexp.MustCompile(`\.0+$`)

// CanonicalID normalizes a driver or task identifier that may have been
// round-tripped through a spreadsheet as a float ("1414170.0" -> "1414170")
func CanonicalID(raw string) string {
	return floatSuffix.ReplaceAllString(strings.TrimSpace(raw), "")
}

// UnmarshalText lets table decoders read legacy and free-form shift cells
func (s *Shift) UnmarshalText(text []byte) error {
	*s = ParseShift(string(text))
	return nil
}
