package eventloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"screenshot-ocr/src/clipboard"
	"screenshot-ocr/src/config"
	"screenshot-ocr/src/presenter"
	"screenshot-ocr/src/screenshot"
	"screenshot-ocr/src/session"
	"screenshot-ocr/src/worker"
)

// UI is the toolkit front end driven by the loop.
type UI interface {
	// Do runs fn on the UI goroutine.
	Do(fn func())
	Quit()
	// NotifyError reports a failure while no dialog is shown.
	NotifyError(err error)
	NewView(text string) presenter.Dialog
}

// Loop is the single-threaded process controller: capture, extract, present,
// and loop on Retake until the dialog finishes. All fields are touched only on
// the UI goroutine; blocking work runs in the worker pool.
type Loop struct {
	cfg    *config.Config
	ui     UI
	clip   clipboard.Writer
	pass   session.Options
	pool   *worker.Pool
	logger *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	quitOnce sync.Once
	current  *presenter.Presenter
	view     presenter.Dialog

	// AfterFunc schedules f after d off the UI goroutine; tests replace it.
	AfterFunc func(d time.Duration, f func())
}

// New creates a loop. pass describes one capture-and-extract run; its Logger
// defaults to the loop's.
func New(cfg *config.Config, ui UI, clip clipboard.Writer, pass session.Options, logger *slog.Logger) *Loop {
	if pass.Logger == nil {
		pass.Logger = logger
	}
	if pass.Lang == "" {
		pass.Lang = cfg.Lang
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		cfg:       cfg,
		ui:        ui,
		clip:      clip,
		pass:      pass,
		pool:      worker.New(logger),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		AfterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Start schedules the first capture. The short delay lets the toolkit finish
// starting before the portal dialog takes focus.
func (l *Loop) Start() {
	l.schedulePass(l.cfg.StartupDelay)
}

// Close releases the worker pool. Call after the UI loop has returned.
func (l *Loop) Close() {
	l.cancel()
	l.pool.Close()
}

// Presenter returns the presenter of the dialog currently shown, if any.
func (l *Loop) Presenter() *presenter.Presenter { return l.current }

func (l *Loop) schedulePass(delay time.Duration) {
	l.AfterFunc(delay, func() { l.ui.Do(l.submit) })
}

func (l *Loop) submit() {
	submitted := l.pool.Submit(l.ctx, l.pass, func(res session.Result, err error) {
		l.ui.Do(func() { l.handleResult(res, err) })
	})
	if !submitted {
		l.logger.Warn("capture already in progress, request dropped")
	}
}

func (l *Loop) handleResult(res session.Result, err error) {
	if err != nil {
		var cerr *screenshot.CaptureError
		if errors.As(err, &cerr) && cerr.Cancelled() {
			l.logger.Info("screenshot cancelled by user")
		} else {
			l.logger.Error("run failed", "err", err)
			l.ui.NotifyError(err)
		}
		l.quit()
		return
	}
	l.present(res)
}

func (l *Loop) present(res session.Result) {
	view := l.ui.NewView(res.Text)
	l.current = presenter.New(view, l.clip, presenter.Hooks{
		Quit:   l.requestQuit,
		Retake: l.retake,
	}, presenter.Options{
		KeepOpen:   l.cfg.KeepOpen,
		CopyGrace:  l.cfg.CopyGrace,
		InitialDir: l.cfg.InitialSaveDir(),
		Do:         l.ui.Do,
	}, l.logger)
	l.view = view
	view.Bind(l.current.Dispatch)
	view.Show()
}

// Raise brings the current dialog to the front. It is safe to call from any
// goroutine and does nothing while a capture is in progress.
func (l *Loop) Raise() {
	l.ui.Do(func() {
		if l.view == nil {
			l.logger.Debug("raise requested with no dialog shown")
			return
		}
		l.view.Show()
	})
}

func (l *Loop) retake() {
	l.current = nil
	l.view = nil
	l.schedulePass(l.cfg.RetakeDelay)
}

// requestQuit may be called from timer goroutines.
func (l *Loop) requestQuit() {
	l.ui.Do(l.quit)
}

func (l *Loop) quit() {
	l.quitOnce.Do(func() {
		l.cancel()
		l.ui.Quit()
	})
}
