package ocr

import (
	"strings"

	"passmrz/pkg/mrz"
)

// linePair is a candidate two-line machine readable zone with its score.
type linePair struct {
	line1 string
	line2 string
	score float64
}

// candidateLines cleans one OCR variant into plausible MRZ lines: spaces
// are artifacts inside a zone, stray non-repertoire runes are dropped, and
// lines far from the TD3 length are discarded.
func candidateLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if isPlausibleMRZLine(line) {
			out = append(out, line)
		}
	}
	return out
}

// cleanLine uppercases, strips whitespace and repairs the usual OCR
// confusions for filler characters before filtering to the OCR-B set.
func cleanLine(s string) string {
	s = strings.ToUpper(s)
	// common misreads of the '<' filler
	s = strings.NewReplacer("«", "<<", "‹", "<", "£", "<").Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '<' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isPlausibleMRZLine applies lightweight heuristics before the expensive
// scoring: roughly TD3-length and either filler-bearing or digit-heavy.
// Deliberately conservative about rejecting, the pair scoring decides.
func isPlausibleMRZLine(s string) bool {
	if len(s) < 30 || len(s) > mrz.TD3LineLength+4 {
		return false
	}
	fillers := strings.Count(s, "<")
	digits := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits++
		}
	}
	return fillers >= 2 || digits >= 10
}

// bestPairFromVariants scans every OCR variant for adjacent candidate
// lines and keeps the highest-scoring pair across all of them.
func bestPairFromVariants(variants []string) (linePair, bool) {
	best := linePair{score: -1}
	for _, v := range variants {
		lines := candidateLines(v)
		for i := 0; i+1 < len(lines); i++ {
			p := scorePair(lines[i], lines[i+1])
			if p.score > best.score {
				best = p
			}
		}
	}
	return best, best.score >= minPairScore
}

// minPairScore is the floor under which a pair is treated as noise rather
// than a misread zone.
const minPairScore = 0.35

// scorePair rates a candidate line pair by structure (first line starts
// with the passport document code, lengths near 44) and by how many ICAO
// check digits verify after digit repair of the data line.
func scorePair(l1, l2 string) linePair {
	l2 = repairDataLine(l2)
	p := linePair{line1: l1, line2: l2}

	structural := 0.0
	if strings.HasPrefix(l1, "P") {
		structural += 0.15
	}
	if strings.Contains(l1, "<<") {
		structural += 0.1
	}
	structural += 0.1 * lengthCloseness(l1)
	structural += 0.1 * lengthCloseness(l2)

	res, err := mrz.ParseTD3(l1, l2)
	if err != nil {
		p.score = 0
		return p
	}
	// check digits dominate: a pair that verifies is almost surely real
	p.score = structural + 0.55*res.Score
	return p
}

func lengthCloseness(s string) float64 {
	d := len(s) - mrz.TD3LineLength
	if d < 0 {
		d = -d
	}
	if d > 4 {
		return 0
	}
	return 1 - float64(d)/4
}

// repairDataLine fixes the classic digit confusions in the numeric regions
// of the second TD3 line (dates and check digits are digit-only there).
func repairDataLine(l string) string {
	if len(l) < mrz.TD3LineLength {
		return l
	}
	b := []byte(l)
	for _, span := range [][2]int{{13, 20}, {21, 28}, {42, 44}} {
		for i := span[0]; i < span[1] && i < len(b); i++ {
			switch b[i] {
			case 'O', 'Q', 'D':
				b[i] = '0'
			case 'I', 'L':
				b[i] = '1'
			case 'S':
				b[i] = '5'
			case 'B':
				b[i] = '8'
			case 'Z':
				b[i] = '2'
			}
		}
	}
	return string(b)
}
