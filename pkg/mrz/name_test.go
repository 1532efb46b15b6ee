package mrz

import "testing"

func TestResolveNameSurnameGiven(t *testing.T) {
	if got := ResolveName("DOE<<JOHN<ROBERT"); got != "JOHN DOE" {
		t.Fatalf("expected JOHN DOE got %q", got)
	}
}

func TestResolveNamePassThroughWithoutSeparator(t *testing.T) {
	if got := ResolveName("DOE"); got != "DOE" {
		t.Fatalf("expected DOE got %q", got)
	}
	// already-normalized names are idempotent
	if got := ResolveName(ResolveName("DOE<<JOHN")); got != "JOHN DOE" {
		t.Fatalf("expected idempotent JOHN DOE got %q", got)
	}
}

func TestResolveNameEmpty(t *testing.T) {
	if got := ResolveName(""); got != UnknownValue {
		t.Fatalf("expected %q got %q", UnknownValue, got)
	}
}

func TestResolveNameAllFiller(t *testing.T) {
	if got := ResolveName("<<<<"); got != UnknownValue {
		t.Fatalf("expected %q got %q", UnknownValue, got)
	}
}

func TestResolveNameSingleSegment(t *testing.T) {
	if got := ResolveName("MADONNA<<"); got != "MADONNA" {
		t.Fatalf("expected MADONNA got %q", got)
	}
	if got := ResolveName("<SMITH<"); got != "SMITH" {
		t.Fatalf("expected SMITH got %q", got)
	}
}

func TestResolveNameDropsExtraGivenNames(t *testing.T) {
	if got := ResolveName("VAN<DER<BERG"); got != "DER VAN" {
		t.Fatalf("expected DER VAN got %q", got)
	}
}
