package ocr

import "errors"

// ErrNoMRZ is returned when no plausible machine readable zone can be
// located in the image.
var ErrNoMRZ = errors.New("no MRZ detected")
