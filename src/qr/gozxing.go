//go:build !noqr

package qr

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
)

// ZXing decodes QR codes, 2D matrix codes and linear barcodes with gozxing.
type ZXing struct{}

// New returns the decoder compiled into this build.
func New() Decoder { return ZXing{} }

func (ZXing) Supported() bool { return true }

// namedReader pairs a single-symbol reader with its symbology for logging.
type namedReader struct {
	name   string
	reader gozxing.Reader
}

// symbologies are tried in order after QR. Readers hold per-decode state, so
// a fresh set is built for every image.
func symbologies() []namedReader {
	hints := map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_TRY_HARDER: true}
	return []namedReader{
		{"datamatrix", datamatrix.NewDataMatrixReader()},
		{"aztec", aztec.NewAztecReader()},
		{"ean/upc", oned.NewMultiFormatUPCEANReader(hints)},
		{"code128", oned.NewCode128Reader()},
		{"code39", oned.NewCode39Reader()},
		{"code93", oned.NewCode93Reader()},
		{"itf", oned.NewITFReader()},
		{"codabar", oned.NewCodaBarReader()},
	}
}

func (ZXing) Decode(imagePath string) (string, error) {
	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarize: %w", err)
	}

	results, qrErr := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, nil)
	if qrErr == nil && len(results) > 0 {
		return results[0].GetText(), nil
	}

	hints := map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_TRY_HARDER: true}
	for _, s := range symbologies() {
		res, err := s.reader.Decode(bmp, hints)
		if err == nil && res != nil {
			return res.GetText(), nil
		}
	}
	if qrErr != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, qrErr)
	}
	return "", ErrNotFound
}
