package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"

	"github.com/kbinani/screenshot"
)

// ScreenAcquirer grabs every active display without user interaction. It is the
// fallback for sessions that have no screenshot portal.
type ScreenAcquirer struct {
	Logger *slog.Logger
	// Dir receives the temporary PNG; empty means os.TempDir.
	Dir string
}

func (s *ScreenAcquirer) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &CaptureError{Op: "screen", Err: err}
	}
	img, err := captureVirtualScreen()
	if err != nil {
		return "", &CaptureError{Op: "screen", Err: err}
	}

	f, err := os.CreateTemp(s.Dir, "screenshot-ocr-*.png")
	if err != nil {
		return "", &CaptureError{Op: "write image", Err: err}
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", &CaptureError{Op: "write image", Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", &CaptureError{Op: "write image", Err: err}
	}
	s.Logger.Info("screen captured", "path", f.Name(), "bounds", img.Bounds().String())
	return f.Name(), nil
}

// captureVirtualScreen captures the union of all active displays.
func captureVirtualScreen() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return screenshot.CaptureRect(union)
}
