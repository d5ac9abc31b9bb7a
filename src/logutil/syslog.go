package logutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// syslogWriter is the priority-aware part of *syslog.Writer.
type syslogWriter interface {
	Err(m string) error
	Warning(m string) error
	Info(m string) error
	Debug(m string) error
}

// syslogSink turns each formatted record into one syslog message at the
// priority of the record being handled.
type syslogSink struct {
	mu    sync.Mutex
	w     syslogWriter
	level slog.Level
}

func (s *syslogSink) Write(p []byte) (int, error) {
	msg := strings.TrimSuffix(string(p), "\n")
	var err error
	switch {
	case s.level >= slog.LevelError:
		err = s.w.Err(msg)
	case s.level >= slog.LevelWarn:
		err = s.w.Warning(msg)
	case s.level >= slog.LevelInfo:
		err = s.w.Info(msg)
	default:
		err = s.w.Debug(msg)
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// syslogHandler formats records as text and sends them with their level.
type syslogHandler struct {
	slog.Handler
	sink *syslogSink
}

func newSyslogHandler(w syslogWriter, opts *slog.HandlerOptions) slog.Handler {
	hopts := slog.HandlerOptions{}
	if opts != nil {
		hopts = *opts
	}
	// syslog stamps its own time.
	hopts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 && a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}
	sink := &syslogSink{w: w}
	return &syslogHandler{Handler: slog.NewTextHandler(sink, &hopts), sink: sink}
}

func (h *syslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.level = r.Level
	return h.Handler.Handle(ctx, r)
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &syslogHandler{Handler: h.Handler.WithAttrs(attrs), sink: h.sink}
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	return &syslogHandler{Handler: h.Handler.WithGroup(name), sink: h.sink}
}
