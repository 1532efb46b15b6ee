package mrz

import "time"

// InvalidDate is returned for raw values that are not six ASCII digits.
const InvalidDate = "Invalid date"

// DateKind tells ResolveDate which century policy family applies. Birth
// dates resolve toward the past, expiration dates toward the present or
// future.
type DateKind int

const (
	BirthDate DateKind = iota
	ExpirationDate
)

// CenturyPolicy selects how a two-digit MRZ year is expanded to four digits.
type CenturyPolicy int

const (
	// PivotFixed compares the two-digit year against a fixed pivot value.
	PivotFixed CenturyPolicy = iota
	// PivotRelative compares birth dates against the last two digits of a
	// reference year (normally the current year), so they keep resolving
	// to the past without ever touching the pivot again. Expiration dates
	// under this policy use the fixed-pivot comparison.
	PivotRelative
	// AlwaysCurrentCentury expands every year as 20YY. Only sensible for
	// expiration dates, which on a live document cannot predate 2000.
	AlwaysCurrentCentury
)

// DateOptions configures century resolution and validation.
type DateOptions struct {
	Policy        CenturyPolicy
	PivotYear     int // two-digit pivot for PivotFixed
	ReferenceYear int // four-digit year for PivotRelative; 0 means time.Now()
	// Strict rejects calendar-impossible month/day values (month 00 or 13,
	// day 32). The default keeps the pass-through behavior: well-formed but
	// impossible values are formatted verbatim.
	Strict bool
}

// DefaultDateOptions resolves birth-date centuries relative to the current
// year and keeps the classic pivot of 30 for fixed-pivot callers.
func DefaultDateOptions() DateOptions {
	return DateOptions{Policy: PivotRelative, PivotYear: 30}
}

// ResolveDate converts a raw YYMMDD MRZ date into DD/MM/YYYY. Raw values
// that are not exactly six digits yield InvalidDate; it never panics and
// never returns an error. Calendar validity is not checked unless
// opts.Strict is set.
func ResolveDate(raw string, kind DateKind, opts DateOptions) string {
	if len(raw) != 6 || !allDigits(raw) {
		return InvalidDate
	}
	yy := int(raw[0]-'0')*10 + int(raw[1]-'0')
	year := resolveCentury(yy, kind, opts) + yy
	if opts.Strict {
		month := int(raw[2]-'0')*10 + int(raw[3]-'0')
		day := int(raw[4]-'0')*10 + int(raw[5]-'0')
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return InvalidDate
		}
	}
	return raw[4:6] + "/" + raw[2:4] + "/" + itoa4(year)
}

// resolveCentury returns the century base (1900 or 2000) for a two-digit year.
func resolveCentury(yy int, kind DateKind, opts DateOptions) int {
	switch opts.Policy {
	case AlwaysCurrentCentury:
		return 2000
	case PivotRelative:
		// relative resolution targets dates in the past; expiration dates
		// run ahead of the reference year, so they keep the fixed pivot
		if kind == ExpirationDate {
			pivot := opts.PivotYear
			if pivot == 0 {
				pivot = 30
			}
			if yy < pivot {
				return 2000
			}
			return 1900
		}
		ref := opts.ReferenceYear
		if ref == 0 {
			ref = time.Now().Year()
		}
		if yy > ref%100 {
			return 1900
		}
		return 2000
	default: // PivotFixed
		pivot := opts.PivotYear
		if pivot == 0 {
			pivot = 30
		}
		if kind == ExpirationDate {
			// expiration: years below the pivot are assumed current century
			if yy < pivot {
				return 2000
			}
			return 1900
		}
		// birth: years above the pivot are assumed previous century
		if yy > pivot {
			return 1900
		}
		return 2000
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// itoa4 formats a four-digit year without pulling in strconv for the hot path.
func itoa4(n int) string {
	b := [4]byte{}
	for i := 3; i >= 0; i-- {
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[:])
}
