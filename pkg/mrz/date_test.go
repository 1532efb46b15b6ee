package mrz

import "testing"

func TestResolveBirthDateFixedPivot(t *testing.T) {
	opts := DateOptions{Policy: PivotFixed, PivotYear: 30}
	if got := ResolveDate("000101", BirthDate, opts); got != "01/01/2000" {
		t.Fatalf("expected 01/01/2000 got %s", got)
	}
	if got := ResolveDate("990101", BirthDate, opts); got != "01/01/1999" {
		t.Fatalf("expected 01/01/1999 got %s", got)
	}
	// the pivot year itself stays in the current century for birth dates
	if got := ResolveDate("300101", BirthDate, opts); got != "01/01/2030" {
		t.Fatalf("expected 01/01/2030 got %s", got)
	}
}

func TestResolveExpirationFixedPivot(t *testing.T) {
	opts := DateOptions{Policy: PivotFixed, PivotYear: 30}
	if got := ResolveDate("250101", ExpirationDate, opts); got != "01/01/2025" {
		t.Fatalf("expected 01/01/2025 got %s", got)
	}
	if got := ResolveDate("350101", ExpirationDate, opts); got != "01/01/1935" {
		t.Fatalf("expected 01/01/1935 got %s", got)
	}
	// pivot year resolves to the previous century on expiration dates
	if got := ResolveDate("300101", ExpirationDate, opts); got != "01/01/1930" {
		t.Fatalf("expected 01/01/1930 got %s", got)
	}
}

func TestResolveExpirationAlwaysCurrentCentury(t *testing.T) {
	opts := DateOptions{Policy: AlwaysCurrentCentury}
	if got := ResolveDate("990101", ExpirationDate, opts); got != "01/01/2099" {
		t.Fatalf("expected 01/01/2099 got %s", got)
	}
}

func TestResolveBirthDateRelativeReference(t *testing.T) {
	opts := DateOptions{Policy: PivotRelative, ReferenceYear: 2026}
	if got := ResolveDate("260101", BirthDate, opts); got != "01/01/2026" {
		t.Fatalf("expected 01/01/2026 got %s", got)
	}
	if got := ResolveDate("270101", BirthDate, opts); got != "01/01/1927" {
		t.Fatalf("expected 01/01/1927 got %s", got)
	}
}

func TestResolveExpirationDefaultPolicy(t *testing.T) {
	// under the default (relative) policy, expiration dates keep the
	// fixed-pivot comparison: a document expiring shortly after the
	// reference year must not land a century in the past
	opts := DefaultDateOptions()
	opts.ReferenceYear = 2026
	if got := ResolveDate("280101", ExpirationDate, opts); got != "01/01/2028" {
		t.Fatalf("expected 01/01/2028 got %s", got)
	}
	if got := ResolveDate("120415", ExpirationDate, opts); got != "15/04/2012" {
		t.Fatalf("expected 15/04/2012 got %s", got)
	}
	if got := ResolveDate("350101", ExpirationDate, opts); got != "01/01/1935" {
		t.Fatalf("expected 01/01/1935 got %s", got)
	}
}

func TestResolveDateRejectsMalformed(t *testing.T) {
	opts := DefaultDateOptions()
	for _, raw := range []string{"", "25011", "2501011", "25011X", "2501 1", "aabbcc"} {
		if got := ResolveDate(raw, BirthDate, opts); got != InvalidDate {
			t.Fatalf("raw %q: expected %q got %q", raw, InvalidDate, got)
		}
		if got := ResolveDate(raw, ExpirationDate, opts); got != InvalidDate {
			t.Fatalf("raw %q: expected %q got %q", raw, InvalidDate, got)
		}
	}
}

func TestResolveDatePassThroughKeepsImpossibleCalendarValues(t *testing.T) {
	// month 13 / day 32 are formatted verbatim by default
	opts := DateOptions{Policy: PivotFixed, PivotYear: 30}
	if got := ResolveDate("991332", BirthDate, opts); got != "32/13/1999" {
		t.Fatalf("expected pass-through 32/13/1999 got %s", got)
	}
}

func TestResolveDateStrictMode(t *testing.T) {
	opts := DateOptions{Policy: PivotFixed, PivotYear: 30, Strict: true}
	if got := ResolveDate("991332", BirthDate, opts); got != InvalidDate {
		t.Fatalf("strict mode should reject month 13, got %s", got)
	}
	if got := ResolveDate("990001", BirthDate, opts); got != InvalidDate {
		t.Fatalf("strict mode should reject month 00, got %s", got)
	}
	if got := ResolveDate("991231", BirthDate, opts); got != "31/12/1999" {
		t.Fatalf("strict mode should accept valid dates, got %s", got)
	}
}

func TestResolveDateShapeInvariant(t *testing.T) {
	// every six-digit numeric input formats DD/MM from its own substrings
	opts := DefaultDateOptions()
	for _, raw := range []string{"000000", "123456", "995959", "500550"} {
		got := ResolveDate(raw, ExpirationDate, opts)
		if len(got) != 10 || got[0:2] != raw[4:6] || got[3:5] != raw[2:4] {
			t.Fatalf("raw %q: malformed output %q", raw, got)
		}
	}
}
