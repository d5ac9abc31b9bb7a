package ocr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ErrNoLanguages is returned when the engine reports no installed language packs.
var ErrNoLanguages = errors.New("no OCR languages installed")

// Engine is the OCR backend.
type Engine interface {
	// Languages lists the installed language packs in engine order.
	Languages() ([]string, error)
	// Text recognizes imagePath with a "+"-joined language specifier.
	Text(imagePath, lang string) (string, error)
}

// DefaultLanguages joins every installed language except the last one. The
// last entry is dropped on purpose: tesseract lists its sorted traineddata
// files, which usually ends with the "osd" orientation pack.
func DefaultLanguages(langs []string) (string, error) {
	if len(langs) == 0 {
		return "", ErrNoLanguages
	}
	return strings.Join(langs[:len(langs)-1], "+"), nil
}

// ResolveLanguages returns override verbatim when set, otherwise the default
// set derived from the engine.
func ResolveLanguages(override string, e Engine) (string, error) {
	if override != "" {
		return override, nil
	}
	langs, err := e.Languages()
	if err != nil {
		return "", fmt.Errorf("list languages: %w", err)
	}
	return DefaultLanguages(langs)
}

// Tesseract runs OCR through libtesseract.
type Tesseract struct {
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
}

func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{TessdataPrefix: tessdataPrefix}
}

func (t *Tesseract) Languages() ([]string, error) {
	return gosseract.GetAvailableLanguages()
}

func (t *Tesseract) Text(imagePath, lang string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	// An empty specifier leaves tesseract on its built-in default.
	if lang != "" {
		if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return "", fmt.Errorf("set language %q: %w", lang, err)
		}
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

// Version reports the linked tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
