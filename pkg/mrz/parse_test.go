package mrz

import "testing"

// ICAO 9303 specimen passport.
const (
	specimenLine1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	specimenLine2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
)

func TestParseTD3Specimen(t *testing.T) {
	res, err := ParseTD3(specimenLine1, specimenLine2)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := map[string]string{
		"type":            "P",
		"country":         "UTO",
		"names":           "ERIKSSON<<ANNA<MARIA",
		"surname":         "ERIKSSON",
		"number":          "L898902C3",
		"nationality":     "UTO",
		"date_of_birth":   "740812",
		"sex":             "F",
		"expiration_date": "120415",
		"personal_number": "ZE184226B",
	}
	for k, v := range want {
		if res.Fields[k] != v {
			t.Fatalf("field %s: expected %q got %q", k, v, res.Fields[k])
		}
	}
	if res.Score != 1.0 {
		t.Fatalf("specimen should pass all check digits, score=%v", res.Score)
	}
}

func TestParseTD3ToleratesShortLines(t *testing.T) {
	// OCR often loses trailing filler; padding must keep field offsets stable
	res, err := ParseTD3("P<UTOERIKSSON<<ANNA<MARIA", specimenLine2)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if res.Fields["surname"] != "ERIKSSON" {
		t.Fatalf("expected ERIKSSON got %q", res.Fields["surname"])
	}
}

func TestParseTD3CorruptCheckDigitLowersScore(t *testing.T) {
	bad := []byte(specimenLine2)
	bad[19] = '7' // birth date check digit
	res, err := ParseTD3(specimenLine1, string(bad))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if res.Score >= 1.0 {
		t.Fatalf("corrupted check digit should lower score, got %v", res.Score)
	}
}

func TestParseTD3RejectsEmptyAndOversized(t *testing.T) {
	if _, err := ParseTD3("", specimenLine2); err == nil {
		t.Fatalf("expected error for empty line")
	}
	long := specimenLine2 + "<<<<<<<<"
	if _, err := ParseTD3(specimenLine1, long); err == nil {
		t.Fatalf("expected error for oversized line")
	}
}

func TestCheckDigit(t *testing.T) {
	cases := map[string]byte{
		"L898902C<": '3',
		"740812":    '2',
		"120415":    '9',
		"<<<<<<<<":  '0',
	}
	for field, want := range cases {
		if got := checkDigit(field); got != want {
			t.Fatalf("checkDigit(%q): expected %c got %c", field, want, got)
		}
	}
}
