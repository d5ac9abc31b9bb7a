package session

import (
	"context"
	"errors"
	"log/slog"

	"screenshot-ocr/src/extract"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/screenshot"
)

type Extractor interface {
	Extract(path, langOverride string) (extract.Result, error)
}

type Cleaner interface {
	Cleanup(path string)
}

type Options struct {
	Acquirer  screenshot.Acquirer
	Extractor Extractor
	Cleaner   Cleaner
	Lang      string
	Logger    *slog.Logger
}

// Result is the outcome of one capture-and-extract pass. Path may already be
// deleted when the cleaner does not retain files.
type Result struct {
	Path string
	extract.Result
}

// Execute runs one pass: capture, extract, clean up. The captured file is
// handed to the cleaner exactly once whenever a capture produced one.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Acquirer == nil {
		return Result{}, errors.New("Acquirer is required")
	}
	if opts.Extractor == nil {
		return Result{}, errors.New("Extractor is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logutil.Discard()
	}

	capture := <-screenshot.CaptureAsync(ctx, opts.Acquirer)
	if capture.Err != nil {
		var cerr *screenshot.CaptureError
		if errors.As(capture.Err, &cerr) && cerr.Cancelled() {
			logger.Info("screenshot cancelled")
		} else {
			logger.Error("can't take a screenshot", "err", capture.Err)
		}
		return Result{}, capture.Err
	}

	res, err := opts.Extractor.Extract(capture.Path, opts.Lang)
	if opts.Cleaner != nil {
		opts.Cleaner.Cleanup(capture.Path)
	}
	if err != nil {
		logger.Error("error extracting text", "err", err)
		return Result{}, err
	}

	logger.Info("extracted text", "source", res.Source, "chars", len(res.Text), "text", logutil.Sanitize(res.Text))
	return Result{Path: capture.Path, Result: res}, nil
}
