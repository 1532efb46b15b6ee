package ocr

import (
	"fmt"
	"log"

	"passmrz/pkg/mrz"
)

// ScanResult is the outcome of locating and reading a machine readable zone.
type ScanResult struct {
	// Fields maps raw MRZ field names (type, country, number,
	// date_of_birth, expiration_date, nationality, sex, names, surname,
	// personal_number) to raw values. No normalization is applied here.
	Fields map[string]string
	// Line1 and Line2 are the cleaned zone lines the fields came from.
	Line1, Line2 string
	// Confidence is the pair score in [0,1]; check-digit agreement is the
	// dominant component.
	Confidence float64
}

// ExtractMRZFromImage preprocesses the image, runs the OCR passes and
// parses the best candidate zone. Returns ErrNoMRZ when nothing plausible
// is found; other errors indicate I/O or engine failures.
func ExtractMRZFromImage(path string) (*ScanResult, error) {
	variants, err := runMRZPasses(path)
	if err != nil {
		return nil, fmt.Errorf("ocr passes: %w", err)
	}
	pair, ok := bestPairFromVariants(variants)
	if !ok {
		log.Printf("OCR no MRZ in %s; first variant snippet=%q", path, snippet(firstOf(variants), 120))
		return nil, ErrNoMRZ
	}
	res, err := mrz.ParseTD3(pair.line1, pair.line2)
	if err != nil {
		return nil, fmt.Errorf("parse mrz: %w", err)
	}
	log.Printf("OCR MRZ %s score=%.2f number=%s", path, pair.score, res.Fields["number"])
	return &ScanResult{
		Fields:     res.Fields,
		Line1:      pair.line1,
		Line2:      pair.line2,
		Confidence: pair.score,
	}, nil
}

func firstOf(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
