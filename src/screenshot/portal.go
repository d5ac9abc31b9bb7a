package screenshot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	portalshot "github.com/rymdport/portal/screenshot"
)

const (
	portalBusName   = "org.freedesktop.portal.Desktop"
	portalObject    = "/org/freedesktop/portal/desktop"
	versionProperty = "org.freedesktop.portal.Screenshot.version"

	// The interactive option is honoured from version 2 of the interface.
	minInteractiveVersion = 2
)

// PortalAcquirer asks xdg-desktop-portal for an interactive screenshot.
type PortalAcquirer struct {
	Logger *slog.Logger

	probe      func() (uint32, error)
	screenshot func(parentWindow string, options *portalshot.ScreenshotOptions) (string, error)
}

func NewPortalAcquirer(logger *slog.Logger) *PortalAcquirer {
	return &PortalAcquirer{
		Logger:     logger,
		probe:      probePortal,
		screenshot: portalshot.Screenshot,
	}
}

// Capture blocks until the user finishes or cancels the portal dialog. A
// cancelled ctx returns early; the portal request itself cannot be withdrawn.
func (p *PortalAcquirer) Capture(ctx context.Context) (string, error) {
	version, err := p.probe()
	if err != nil {
		return "", &CaptureError{Op: "portal probe", Err: err}
	}
	if version < minInteractiveVersion {
		p.Logger.Warn("screenshot portal predates interactive mode", "version", version)
	}

	type reply struct {
		uri string
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		uri, err := p.screenshot("", &portalshot.ScreenshotOptions{
			HandleToken: handleToken(),
			Interactive: true,
		})
		ch <- reply{uri, err}
	}()

	var r reply
	select {
	case r = <-ch:
	case <-ctx.Done():
		return "", &CaptureError{Op: "portal request", Err: ctx.Err()}
	}
	if r.err != nil {
		return "", &CaptureError{Op: "portal request", Err: r.err}
	}
	if r.uri == "" {
		return "", &CaptureError{Op: "portal request", Err: ErrCancelled}
	}

	path, err := PathFromURI(r.uri)
	if err != nil {
		return "", err
	}
	p.Logger.Info("screenshot captured", "path", path)
	return path, nil
}

func probePortal() (uint32, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0, fmt.Errorf("session bus: %w", err)
	}
	obj := conn.Object(portalBusName, dbus.ObjectPath(portalObject))
	// Ping activates the portal service if it is not running yet.
	if err := obj.Call("org.freedesktop.DBus.Peer.Ping", 0).Err; err != nil {
		return 0, fmt.Errorf("%s unreachable: %w", portalBusName, err)
	}
	v, err := obj.GetProperty(versionProperty)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", versionProperty, err)
	}
	version, ok := v.Value().(uint32)
	if !ok {
		return 0, fmt.Errorf("unexpected %s type %s", versionProperty, v.Signature())
	}
	return version, nil
}

// handleToken must be a valid object path element.
func handleToken() string {
	return "screenshot_ocr_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
