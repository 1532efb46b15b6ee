package ocr

import (
	"errors"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

// Requires a working Tesseract install; opt in with OCR_TEST=1.
func TestErrNoMRZOnBlankImage(t *testing.T) {
	if os.Getenv("OCR_TEST") != "1" {
		t.Skip("OCR engine tests are disabled; set OCR_TEST=1 to enable")
	}
	img := imaging.New(800, 500, color.NRGBA{255, 255, 255, 255})
	f, err := os.CreateTemp("", "blank-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_ = f.Close()
	_ = imaging.Save(img, f.Name())
	defer os.Remove(f.Name())
	_, er := ExtractMRZFromImage(f.Name())
	if !errors.Is(er, ErrNoMRZ) {
		t.Fatalf("expected ErrNoMRZ got %v", er)
	}
}
