//go:build noqr

package qr

import "errors"

type unsupported struct{}

// New returns the decoder compiled into this build.
func New() Decoder { return unsupported{} }

func (unsupported) Supported() bool { return false }

func (unsupported) Decode(string) (string, error) {
	return "", errors.New("built without barcode support")
}
