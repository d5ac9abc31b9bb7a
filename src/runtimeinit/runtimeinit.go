package runtimeinit

import (
	"fmt"
	"log/slog"

	"screenshot-ocr/src/clipboard"
	"screenshot-ocr/src/config"
	"screenshot-ocr/src/extract"
	"screenshot-ocr/src/lifecycle"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/qr"
	"screenshot-ocr/src/screenshot"
	"screenshot-ocr/src/session"
)

type Options struct {
	LoadOptions config.LoadOptions
	// SetupLogging builds the process logger; defaults to logutil.Setup.
	SetupLogging func(cfg *config.Config) *slog.Logger
	// SkipClipboard leaves the system clipboard uninitialised (headless use).
	SkipClipboard bool
}

// Runtime is everything a run needs, built once at startup.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Extractor *extract.Extractor
	Pass      session.Options
	Clipboard clipboard.Writer
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	setup := opts.SetupLogging
	if setup == nil {
		setup = func(cfg *config.Config) *slog.Logger {
			return logutil.Setup(logutil.Options{Sink: cfg.LogSink})
		}
	}
	logger := setup(cfg)
	for _, w := range cfg.Warnings {
		logger.Warn("configuration", "err", w)
	}

	decoder := qr.New()
	if !decoder.Supported() {
		logger.Warn("QR code support not compiled in, QR code extraction will not work")
	}
	extractor := extract.New(ocr.NewTesseract(cfg.TessdataPrefix), decoder, logger)

	rt := &Runtime{
		Config:    cfg,
		Logger:    logger,
		Extractor: extractor,
		Pass: session.Options{
			Acquirer:  screenshot.New(cfg.CaptureBackend, logger),
			Extractor: extractor,
			Cleaner:   lifecycle.New(cfg.RetainFile, logger),
			Lang:      cfg.Lang,
			Logger:    logger,
		},
	}

	if !opts.SkipClipboard {
		if err := clipboard.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		rt.Clipboard = clipboard.System{}
	}

	logger.Info("screenshot-ocr initialized",
		"capture_backend", cfg.CaptureBackend,
		"lang", cfg.Lang,
		"retain_file", cfg.RetainFile,
		"keep_open", cfg.KeepOpen,
		"save_location", cfg.SaveLocation)
	return rt, nil
}
