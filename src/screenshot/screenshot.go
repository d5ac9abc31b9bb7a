package screenshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"screenshot-ocr/src/config"
)

// ErrCancelled is wrapped by a CaptureError when the user dismissed the capture UI.
var ErrCancelled = errors.New("screenshot cancelled")

// Acquirer produces a local path to a freshly captured image. The file is owned
// by the caller once returned.
type Acquirer interface {
	Capture(ctx context.Context) (string, error)
}

// CaptureError reports a failed or cancelled capture.
type CaptureError struct {
	Op  string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture: %s: %v", e.Op, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Cancelled reports whether the user aborted the interactive capture.
func (e *CaptureError) Cancelled() bool { return errors.Is(e.Err, ErrCancelled) }

// New returns the acquirer for the configured backend.
func New(backend string, logger *slog.Logger) Acquirer {
	if backend == config.CaptureBackendScreen {
		return &ScreenAcquirer{Logger: logger}
	}
	return NewPortalAcquirer(logger)
}

// PathFromURI turns the file:// URI handed out by the portal into a local path.
func PathFromURI(uri string) (string, error) {
	const scheme = "file://"
	if !strings.HasPrefix(uri, scheme) {
		return "", &CaptureError{Op: "parse uri", Err: fmt.Errorf("unsupported uri %q", uri)}
	}
	path, err := url.PathUnescape(uri[len(scheme):])
	if err != nil {
		return "", &CaptureError{Op: "parse uri", Err: err}
	}
	if path == "" || !strings.HasPrefix(path, "/") {
		return "", &CaptureError{Op: "parse uri", Err: fmt.Errorf("uri %q has no local path", uri)}
	}
	return path, nil
}

// CaptureResult is the single value delivered by CaptureAsync: a path or an error.
type CaptureResult struct {
	Path string
	Err  error
}

// CaptureAsync runs the capture in the background. The returned channel yields
// exactly one result and is then closed.
func CaptureAsync(ctx context.Context, a Acquirer) <-chan CaptureResult {
	ch := make(chan CaptureResult, 1)
	go func() {
		defer close(ch)
		path, err := a.Capture(ctx)
		if err != nil {
			ch <- CaptureResult{Err: err}
			return
		}
		ch <- CaptureResult{Path: path}
	}()
	return ch
}
