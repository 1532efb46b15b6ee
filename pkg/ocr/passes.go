package ocr

import (
	"image"
	"log"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// mrzWhitelist restricts recognition to the OCR-B repertoire a machine
// readable zone can contain.
const mrzWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// runMRZPasses executes the multi-pass OCR strategy over an image file and
// returns the text of every variant. Each pass trades off differently
// against glare, low contrast and skew; candidate extraction later scans
// them all.
func runMRZPasses(path string) ([]string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	gray := prepare(img)
	band := mrzBand(gray)
	otsu := otsuThreshold(gray)
	bandOtsu := otsuThreshold(band)

	var variants []string
	addPass := func(m image.Image, psm gosseract.PageSegMode) {
		if t, err := recognize(m, psm); err == nil && t != "" {
			variants = append(variants, t)
		}
	}

	// the MRZ band first: tighter crops recognize markedly better
	addPass(bandOtsu, gosseract.PSM_SINGLE_BLOCK)
	addPass(band, gosseract.PSM_SINGLE_BLOCK)
	addPass(otsu, gosseract.PSM_SINGLE_BLOCK)
	addPass(gray, gosseract.PSM_SINGLE_BLOCK)

	// inverted pass helps with dark passport pages
	addPass(imaging.Invert(bandOtsu), gosseract.PSM_SINGLE_BLOCK)

	// fallback segmentation modes over the full page
	addPass(gray, gosseract.PSM_AUTO)
	addPass(gray, gosseract.PSM_SPARSE_TEXT)

	log.Printf("OCR passes %s variants=%d", path, len(variants))
	if len(variants) == 0 {
		return nil, ErrNoMRZ
	}
	return variants, nil
}

// recognize writes the image to a temp file and runs one whitelisted
// Tesseract pass over it.
func recognize(img image.Image, psm gosseract.PageSegMode) (string, error) {
	tmpFile, err := os.CreateTemp("", "mrz-*.png")
	if err != nil {
		return "", err
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmp)
	if err := imaging.Save(img, tmp); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetWhitelist(mrzWhitelist)
	_ = client.SetPageSegMode(psm)
	client.SetImage(tmp)
	return client.Text()
}
