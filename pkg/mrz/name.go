package mrz

import (
	"log"
	"strings"
)

// UnknownValue is the placeholder for absent or unparseable string fields.
const UnknownValue = "Unknown"

// ResolveName converts an MRZ name field (SURNAME<<GIVEN<NAMES, with '<'
// doubling as both word and field separator) into "GIVEN SURNAME" display
// form. Only the first given-name token is surfaced; additional given
// names are dropped. Inputs without a separator are already in display
// form and pass through unchanged. Normalization is best-effort and never
// aborts the surrounding workflow: an unexpected internal fault is logged
// and the original raw value returned as-is.
func ResolveName(raw string) (out string) {
	if raw == "" {
		return UnknownValue
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("mrz: name parse recovered: %v raw=%q", r, raw)
			out = raw
		}
	}()
	if !strings.Contains(raw, "<") {
		return raw
	}
	var parts []string
	for _, p := range strings.Split(raw, "<") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch {
	case len(parts) >= 2:
		return parts[1] + " " + parts[0]
	case len(parts) == 1:
		return parts[0]
	default:
		return UnknownValue
	}
}
