package mrz

import "testing"

func TestFormatFieldsOrderAndLabels(t *testing.T) {
	raw := map[string]string{
		"type":            "P",
		"country":         "UTO",
		"number":          "L898902C3",
		"date_of_birth":   "740812",
		"expiration_date": "120415",
		"nationality":     "UTO",
		"sex":             "F",
		"names":           "ERIKSSON<<ANNA<MARIA",
	}
	fields := FormatFields(raw, DateOptions{Policy: PivotFixed, PivotYear: 30})
	labels := []string{
		"Document Type", "Issuing Country", "Passport Number",
		"Date of Birth", "Expiration Date", "Nationality", "Gender", "Full Name",
	}
	if len(fields) != len(labels) {
		t.Fatalf("expected %d fields got %d", len(labels), len(fields))
	}
	for i, l := range labels {
		if fields[i].Label != l {
			t.Fatalf("field %d: expected label %q got %q", i, l, fields[i].Label)
		}
	}
	if fields[3].Value != "12/08/1974" {
		t.Fatalf("birth date: got %q", fields[3].Value)
	}
	if fields[4].Value != "15/04/2012" {
		t.Fatalf("expiration date: got %q", fields[4].Value)
	}
	if fields[6].Value != "Female" {
		t.Fatalf("gender: got %q", fields[6].Value)
	}
	if fields[7].Value != "ANNA ERIKSSON" {
		t.Fatalf("full name: got %q", fields[7].Value)
	}
}

func TestFormatFieldsDefaultsForMissingKeys(t *testing.T) {
	fields := FormatFields(map[string]string{}, DateOptions{Policy: PivotFixed, PivotYear: 30})
	if fields[0].Value != UnknownValue {
		t.Fatalf("missing type should default to Unknown, got %q", fields[0].Value)
	}
	// missing dates default to 000000 before resolution, never to the sentinel
	if fields[3].Value != "00/00/2000" {
		t.Fatalf("missing birth date: got %q", fields[3].Value)
	}
	if fields[7].Value != UnknownValue {
		t.Fatalf("missing names should default to Unknown, got %q", fields[7].Value)
	}
}

func TestFormatFieldsGenderMale(t *testing.T) {
	fields := FormatFields(map[string]string{"sex": "M"}, DefaultDateOptions())
	if fields[6].Value != "Male" {
		t.Fatalf("expected Male got %q", fields[6].Value)
	}
}
