package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// prepare applies the base enhancement chain: grayscale, mild contrast and
// sharpening, and an upscale for small captures so the OCR glyphs have
// enough pixels.
func prepare(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < 900 {
		gray = imaging.Resize(gray, 0, 1300, imaging.Lanczos)
	}
	return gray
}

// otsuThreshold binarizes a grayscale image with Otsu's method: pick the
// threshold that maximizes between-class variance of the histogram.
func otsuThreshold(img image.Image) *image.NRGBA {
	b := img.Bounds()
	var hist [256]int
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			hist[uint8((r+g+bb)/3>>8)]++
			total++
		}
	}
	sum := 0.0
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}
	var sumB, wB float64
	best, bestVar := 0, 0.0
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = i
		}
	}
	return binarize(img, uint8(best))
}

// binarize performs a global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// mrzBand crops the lower portion of the page where the machine readable
// zone sits on a TD3 passport.
func mrzBand(img image.Image) *image.NRGBA {
	b := img.Bounds()
	h := b.Dy()
	top := b.Min.Y + (h*3)/5
	return imaging.Crop(img, image.Rect(b.Min.X, top, b.Max.X, b.Max.Y))
}
