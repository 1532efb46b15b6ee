package main

import (
	"flag"
	"fmt"
	"log"

	"passmrz/pkg/mrz"
	"passmrz/pkg/ocr"
)

func main() {
	f := flag.String("file", "", "image file to OCR")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}
	res, err := ocr.ExtractMRZFromImage(*f)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	fmt.Printf("line1=%s\nline2=%s\nconf=%.4f\n", res.Line1, res.Line2, res.Confidence)
	for _, fld := range mrz.FormatFields(res.Fields, mrz.DefaultDateOptions()) {
		fmt.Printf("%s: %s\n", fld.Label, fld.Value)
	}
}
