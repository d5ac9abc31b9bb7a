// Package singleinstance keeps one capture session per user. The running
// session listens on a loopback port; a second launch finds it, asks it to
// raise its dialog, and exits.
package singleinstance

import (
	"context"
	"errors"
	"log/slog"
)

var ErrAlreadyRunning = errors.New("another instance is already running")

// Acquire claims the session. When another instance answers on the port range
// it is asked to raise its dialog and ErrAlreadyRunning is returned. onRaise is
// called from the guard's goroutine.
func Acquire(ctx context.Context, onRaise func(), logger *slog.Logger) (*Guard, error) {
	ports, err := resolvePorts()
	if err != nil {
		logger.Warn("ignoring guard port setting", "err", err, "base", ports.base)
	}
	if addr, ok := detectResident(ctx, ports); ok {
		if err := raise(ctx, addr); err != nil {
			logger.Warn("resident instance did not accept raise", "addr", addr, "err", err)
		}
		return nil, ErrAlreadyRunning
	}

	g := newGuard(onRaise, logger)
	if err := g.listen(ports); err != nil {
		return nil, err
	}
	return g, nil
}
