// Package qr decodes QR codes and other barcodes from captured images.
// Decoding is optional: builds with the noqr tag get a decoder that reports
// itself unsupported.
package qr

import "errors"

// ErrNotFound is returned when an image holds no decodable barcode.
var ErrNotFound = errors.New("no barcode found")

// Decoder extracts the payload of the first barcode in an image.
type Decoder interface {
	Supported() bool
	Decode(imagePath string) (string, error)
}
