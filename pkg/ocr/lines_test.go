package ocr

import "testing"

const (
	specimenLine1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	specimenLine2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
)

func TestCleanLineStripsNoise(t *testing.T) {
	if got := cleanLine("p<uto eriksson<<anna<maria<<<<<<<<<<<<<<<<<<<"); got != specimenLine1 {
		t.Fatalf("expected %q got %q", specimenLine1, got)
	}
	if got := cleanLine("  L8989 02C36UTO74081 22F1204159ZE184226B<<<<<10 "); got != specimenLine2 {
		t.Fatalf("expected spaces stripped, got %q", got)
	}
}

func TestCandidateLinesFiltersShortAndNoise(t *testing.T) {
	text := "REPUBLIC OF UTOPIA\nPASSPORT\n" + specimenLine1 + "\n" + specimenLine2 + "\nsignature"
	lines := candidateLines(text)
	if len(lines) != 2 {
		t.Fatalf("expected 2 candidate lines got %d: %v", len(lines), lines)
	}
	if lines[0] != specimenLine1 || lines[1] != specimenLine2 {
		t.Fatalf("unexpected candidates: %v", lines)
	}
}

func TestBestPairFromVariantsPicksChecksummedPair(t *testing.T) {
	noisy := "UTOPIA TRAVEL DOCUMENT\n" + specimenLine1 + "\n" + specimenLine2
	pair, ok := bestPairFromVariants([]string{"no zone here at all", noisy})
	if !ok {
		t.Fatalf("expected a pair")
	}
	if pair.line1 != specimenLine1 || pair.line2 != specimenLine2 {
		t.Fatalf("wrong pair chosen: %q / %q", pair.line1, pair.line2)
	}
	if pair.score < 0.9 {
		t.Fatalf("specimen pair should score high, got %v", pair.score)
	}
}

func TestBestPairFromVariantsRejectsGarbage(t *testing.T) {
	if _, ok := bestPairFromVariants([]string{"THE QUICK BROWN FOX\nJUMPS OVER THE LAZY DOG"}); ok {
		t.Fatalf("garbage text should not yield a pair")
	}
}

func TestRepairDataLineFixesDigitConfusions(t *testing.T) {
	// O and I misreads inside the birth date region
	bad := specimenLine2[:13] + "74O8I2" + specimenLine2[19:]
	if got := repairDataLine(bad); got != specimenLine2 {
		t.Fatalf("expected repaired line, got %q", got)
	}
}

func TestRepairDataLineKeepsShortLines(t *testing.T) {
	if got := repairDataLine("SHORT"); got != "SHORT" {
		t.Fatalf("short lines must pass through, got %q", got)
	}
}
