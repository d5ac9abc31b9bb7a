package logutil

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"screenshot-ocr/src/config"
)

const (
	logFileName  = "screenshot_ocr_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Options selects the sink and level of the process logger.
type Options struct {
	Sink  string
	Debug bool
}

// Setup builds the process-lifetime logger for the chosen sink and installs it
// as the slog and std log default. A syslog sink that cannot be reached falls
// back to stderr.
func Setup(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handler, fallbackErr := newHandler(opts.Sink, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	log.SetFlags(0)
	if fallbackErr != nil {
		logger.Warn("log sink unavailable, using stderr", "sink", opts.Sink, "err", fallbackErr)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHandler returns the handler for sink. On error the handler writes to
// stderr instead.
func newHandler(sink string, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch sink {
	case config.LogSinkNone:
		return slog.NewTextHandler(io.Discard, opts), nil
	case config.LogSinkStderr:
		return slog.NewTextHandler(os.Stderr, opts), nil
	case config.LogSinkFile:
		rotateIfNeeded()
		f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return slog.NewTextHandler(os.Stderr, opts), err
		}
		return slog.NewTextHandler(&rotatingWriter{f: f}, opts), nil
	default:
		w, err := openSyslog()
		if err != nil {
			return slog.NewTextHandler(os.Stderr, opts), err
		}
		return newSyslogHandler(w, opts), nil
	}
}

type rotatingWriter struct{ f *os.File }

func (w *rotatingWriter) Write(p []byte) (int, error) {
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotateIfNeeded()
		nf, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded() {
	// If base exceeds max size, rotate: .1, .2, .3 (oldest discarded)
	if st, err := os.Stat(logFileName); err == nil && st.Size() > maxSizeBytes {
		_ = os.Remove(archiveName(maxArchives))
		for i := maxArchives - 1; i >= 1; i-- {
			_ = os.Rename(archiveName(i), archiveName(i+1))
		}
		_ = os.Rename(logFileName, archiveName(1))
	}
}

func archiveName(n int) string { return filepath.Join(".", fmt.Sprintf("%s.%d", logFileName, n)) }

const maxLogLength = 100

// Sanitize prepares extracted text for a single log line: text longer than
// 100 bytes is cut on a rune boundary and control characters are escaped.
func Sanitize(text string) string {
	if len(text) > maxLogLength {
		cut := maxLogLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return Escape(text)
}

// Escape rewrites control characters so OCR output cannot forge log entries.
// Unlike Sanitize it keeps the whole text.
func Escape(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
