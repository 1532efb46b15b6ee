package mrz

import (
	"fmt"
	"strings"
)

// TD3 passports carry two 44-character machine readable lines.
const TD3LineLength = 44

// Result holds the raw fields recovered from a TD3 MRZ plus a check-digit
// validity score in [0,1]. Field values stay in raw MRZ form ('<' padding
// stripped, no date or name normalization) so callers decide presentation.
type Result struct {
	Fields map[string]string
	Score  float64
}

// ParseTD3 splits a two-line TD3 MRZ into its raw fields. Short lines are
// right-padded with '<' before slicing, so parsing is tolerant of OCR
// truncation; the score is where strictness lives. An error is returned
// only when a line is empty or grossly longer than the format allows.
func ParseTD3(line1, line2 string) (*Result, error) {
	line1 = strings.ToUpper(strings.TrimSpace(line1))
	line2 = strings.ToUpper(strings.TrimSpace(line2))
	if line1 == "" || line2 == "" {
		return nil, fmt.Errorf("mrz: empty line")
	}
	if len(line1) > TD3LineLength+2 || len(line2) > TD3LineLength+2 {
		return nil, fmt.Errorf("mrz: line too long (%d/%d chars)", len(line1), len(line2))
	}
	line1 = padLine(line1)
	line2 = padLine(line2)

	nameField := strings.TrimRight(line1[5:44], "<")
	surname := nameField
	if i := strings.Index(nameField, "<<"); i >= 0 {
		surname = nameField[:i]
	}
	surname = strings.ReplaceAll(surname, "<", " ")

	fields := map[string]string{
		"type":            strings.TrimRight(line1[0:2], "<"),
		"country":         strings.TrimRight(line1[2:5], "<"),
		"names":           nameField,
		"surname":         surname,
		"number":          strings.TrimRight(line2[0:9], "<"),
		"nationality":     strings.TrimRight(line2[10:13], "<"),
		"date_of_birth":   line2[13:19],
		"sex":             strings.TrimRight(line2[20:21], "<"),
		"expiration_date": line2[21:27],
		"personal_number": strings.TrimRight(line2[28:42], "<"),
	}
	return &Result{Fields: fields, Score: scoreLine2(line2)}, nil
}

// scoreLine2 verifies the five ICAO check digits on the second line and
// returns the fraction that hold.
func scoreLine2(l string) float64 {
	checks := 0
	if checkDigit(l[0:9]) == l[9] {
		checks++
	}
	if checkDigit(l[13:19]) == l[19] {
		checks++
	}
	if checkDigit(l[21:27]) == l[27] {
		checks++
	}
	// an empty personal number may carry '<' instead of '0'
	if checkDigit(l[28:42]) == l[42] || (l[42] == '<' && strings.Trim(l[28:42], "<") == "") {
		checks++
	}
	if checkDigit(l[0:10]+l[13:20]+l[21:43]) == l[43] {
		checks++
	}
	return float64(checks) / 5
}

// checkDigit computes the ICAO 9303 check digit (7-3-1 weighting) over a
// field, mapping digits to themselves, A-Z to 10-35 and filler to 0.
func checkDigit(field string) byte {
	weights := [3]int{7, 3, 1}
	sum := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		var v int
		switch {
		case c >= '0' && c <= '9':
			v = int(c - '0')
		case c >= 'A' && c <= 'Z':
			v = int(c-'A') + 10
		default:
			v = 0
		}
		sum += v * weights[i%3]
	}
	return byte('0' + sum%10)
}

func padLine(l string) string {
	if len(l) >= TD3LineLength {
		return l[:TD3LineLength]
	}
	return l + strings.Repeat("<", TD3LineLength-len(l))
}
