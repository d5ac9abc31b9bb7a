package extract

import (
	"fmt"
	"log/slog"
	"os"

	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/qr"
)

// Source names the path that produced the text.
type Source string

const (
	SourceQR  Source = "qr"
	SourceOCR Source = "ocr"
)

type Result struct {
	Text      string
	Source    Source
	Languages string
}

// ExtractionError reports an unreadable image, an OCR engine failure or a
// missing language set.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type Extractor struct {
	Engine  ocr.Engine
	Decoder qr.Decoder
	Logger  *slog.Logger
}

func New(engine ocr.Engine, decoder qr.Decoder, logger *slog.Logger) *Extractor {
	return &Extractor{Engine: engine, Decoder: decoder, Logger: logger}
}

// Extract tries a QR code first and falls back to OCR with langOverride, or
// with the engine's default language set when langOverride is empty.
func (x *Extractor) Extract(path, langOverride string) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, &ExtractionError{Path: path, Err: err}
	}

	lang, err := ocr.ResolveLanguages(langOverride, x.Engine)
	if err != nil {
		return Result{}, &ExtractionError{Path: path, Err: err}
	}
	x.Logger.Info("using OCR languages", "lang", lang)

	if x.Decoder != nil && x.Decoder.Supported() {
		text, err := x.Decoder.Decode(path)
		if err == nil {
			x.Logger.Info("QR code decoded", "chars", len(text))
			return Result{Text: text, Source: SourceQR, Languages: lang}, nil
		}
		x.Logger.Warn("QR decode failed, falling back to OCR", "err", err)
	}

	text, err := x.Engine.Text(path, lang)
	if err != nil {
		return Result{}, &ExtractionError{Path: path, Err: err}
	}
	return Result{Text: text, Source: SourceOCR, Languages: lang}, nil
}
