package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screenshot-ocr/src/config"
	"screenshot-ocr/src/extract"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/runtimeinit"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	lang       string
	jsonOutput bool
	verbose    bool
}

type extractor interface {
	Extract(path, lang string) (extract.Result, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"ocr-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ocr-tool",
		Short:         "Extract text from a PNG via QR code or OCR",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Tesseract languages, e.g. eng+deu (default: all installed)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{Lang: opts.lang},
		SetupLogging: func(*config.Config) *slog.Logger {
			// stdout carries only the result.
			if !opts.verbose {
				return logutil.Discard()
			}
			return logutil.Setup(logutil.Options{Sink: config.LogSinkStderr, Debug: true})
		},
		SkipClipboard: true,
	})
	if err != nil {
		return err
	}
	if opts.verbose {
		rt.Logger.Debug("ocr engine", "tesseract", ocr.Version(), "qr", rt.Extractor.Decoder.Supported())
	}

	return processImage(rt.Extractor, rt.Config.Lang, opts, os.Stdin, os.Stdout, rt.Logger)
}

func processImage(ex extractor, lang string, opts cliOptions, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	imageData, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	logger.Debug("read image", "bytes", len(imageData))

	if err := validatePNG(imageData); err != nil {
		return err
	}

	// The engines read from disk, so stdin input goes through a temp file.
	path := opts.filePath
	if path == "-" {
		tmp, err := os.CreateTemp("", "ocr-tool-*.png")
		if err != nil {
			return fmt.Errorf("failed to create temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(imageData); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("failed to write temp file: %w", err)
		}
		path = tmp.Name()
	}

	startTime := time.Now()
	res, err := ex.Extract(path, lang)
	elapsed := time.Since(startTime)
	if err != nil {
		logger.Debug("extraction failed", "elapsed", elapsed, "err", err)
		return fmt.Errorf("extraction failed: %w", err)
	}
	logger.Debug("extraction completed", "elapsed", elapsed, "method", res.Source, "chars", len(res.Text))

	return outputResult(stdout, res, opts.filePath, elapsed, opts.jsonOutput)
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var imageData []byte
	var err error
	if filePath == "-" {
		imageData, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return imageData, nil
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

type OCRResult struct {
	Text      string  `json:"text"`
	Source    string  `json:"source"`
	Method    string  `json:"method"`
	Languages string  `json:"languages,omitempty"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration_seconds"`
	CharCount int     `json:"character_count"`
}

func outputResult(w io.Writer, res extract.Result, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		_, err := io.WriteString(w, res.Text)
		return err
	}

	result := OCRResult{
		Text:      res.Text,
		Source:    sourcePath,
		Method:    string(res.Source),
		Languages: res.Languages,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  elapsed.Seconds(),
		CharCount: len(res.Text),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "lang", "json", "verbose"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
