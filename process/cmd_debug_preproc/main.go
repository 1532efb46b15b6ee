package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"passmrz/pkg/ocr"

	"github.com/disintegration/imaging"
)

// Applies an extra-aggressive preprocessing step before OCR. Useful when a
// scan comes back empty and we want to see whether the image itself is the
// problem.
func main() {
	keep := flag.Bool("keep", false, "keep the preprocessed temp image")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("usage: go run ./process/cmd_debug_preproc [--keep] <image>")
		os.Exit(2)
	}
	in := flag.Arg(0)
	img, err := imaging.Open(in)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	proc := imaging.Grayscale(img)
	proc = imaging.Sharpen(proc, 2.0)
	proc = imaging.AdjustContrast(proc, 30)
	if proc.Bounds().Dx() < 1100 {
		proc = imaging.Resize(proc, 1600, 0, imaging.Lanczos)
	}
	tmp := filepath.Join(os.TempDir(), filepath.Base(in)+".retry.png")
	if err := imaging.Save(proc, tmp); err != nil {
		log.Fatalf("save tmp: %v", err)
	}
	res, err := ocr.ExtractMRZFromImage(tmp)
	if !*keep {
		_ = os.Remove(tmp)
	} else {
		fmt.Printf("preprocessed image kept at %s\n", tmp)
	}
	if err != nil {
		log.Fatalf("ocr err: %v", err)
	}
	fmt.Printf("after-preproc conf=%.4f\n", res.Confidence)
	fmt.Printf("line1=%q\n", res.Line1)
	fmt.Printf("line2=%q\n", res.Line2)
	for k, v := range res.Fields {
		fmt.Printf("  %s=%s\n", k, v)
	}
}
