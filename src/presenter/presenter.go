// Package presenter holds the result dialog's behaviour, independent of the
// toolkit that draws it. Views report user actions as Events; the Presenter
// dispatches them through a fixed handler table.
package presenter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"screenshot-ocr/src/clipboard"
	"screenshot-ocr/src/config"
	"screenshot-ocr/src/logutil"
)

// Event is a user action on the result dialog.
type Event int

const (
	EventSave Event = iota
	EventCopy
	EventRetake
	EventClose
)

func (e Event) String() string {
	switch e {
	case EventSave:
		return "save"
	case EventCopy:
		return "copy"
	case EventRetake:
		return "retake"
	case EventClose:
		return "close"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// State is the dialog state. Shown is the only non-terminal state; Saved and
// Copied stay interactive when the dialog is kept open.
type State int

const (
	StateShown State = iota
	StateSaved
	StateCopied
	StateRetaken
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateShown:
		return "shown"
	case StateSaved:
		return "saved"
	case StateCopied:
		return "copied"
	case StateRetaken:
		return "retaken"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// CopiedToast is shown after a successful copy.
const CopiedToast = "Text copied to clipboard"

// ErrChooserCancelled is returned by a View when the user dismissed the save chooser.
var ErrChooserCancelled = errors.New("save cancelled")

// SaveError reports a failed write of the dialog text.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("Error saving file: %v", e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// View is the toolkit side of the dialog. All methods run on the UI goroutine.
type View interface {
	// Text returns the current, possibly edited, text.
	Text() string
	// ChooseSavePath asks for a target file and calls done exactly once with
	// the chosen path, ErrChooserCancelled, or another error.
	ChooseSavePath(defaultName, initialDir string, done func(path string, err error))
	// ShowError presents a blocking error message.
	ShowError(err error)
	// ShowToast presents a short-lived notice.
	ShowToast(msg string)
	// Close destroys the dialog.
	Close()
}

// Dialog is a View that can be wired to a dispatcher and shown.
type Dialog interface {
	View
	Bind(dispatch func(Event))
	Show()
}

// Hooks connect the presenter back to the process controller.
type Hooks struct {
	Quit   func()
	Retake func()
}

type Options struct {
	KeepOpen   bool
	CopyGrace  time.Duration
	InitialDir string
	// AfterFunc schedules f after d; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func())
	// Do runs f on the UI goroutine; scheduled callbacks go through it before
	// touching presenter state. Defaults to calling f directly.
	Do  func(f func())
	Now func() time.Time
}

// Handlers is the dispatch table from events to behaviour.
type Handlers map[Event]func()

type Presenter struct {
	view     View
	clip     clipboard.Writer
	hooks    Hooks
	opts     Options
	logger   *slog.Logger
	state    State
	handlers Handlers
}

func New(view View, clip clipboard.Writer, hooks Hooks, opts Options, logger *slog.Logger) *Presenter {
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if opts.Do == nil {
		opts.Do = func(f func()) { f() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logutil.Discard()
	}
	p := &Presenter{view: view, clip: clip, hooks: hooks, opts: opts, logger: logger}
	p.handlers = Handlers{
		EventSave:   p.onSave,
		EventCopy:   p.onCopy,
		EventRetake: p.onRetake,
		EventClose:  p.onClose,
	}
	return p
}

// State returns the current dialog state.
func (p *Presenter) State() State { return p.state }

// finished reports whether the dialog is gone. Late chooser and timer
// callbacks must not act on a finished dialog.
func (p *Presenter) finished() bool {
	return p.state == StateRetaken || p.state == StateClosed
}

// Dispatch routes a user action. Events after Retaken or Closed are ignored.
func (p *Presenter) Dispatch(ev Event) {
	if p.finished() {
		p.logger.Debug("event after dialog finished", "event", ev, "state", p.state)
		return
	}
	h, ok := p.handlers[ev]
	if !ok {
		p.logger.Warn("unhandled dialog event", "event", ev)
		return
	}
	h()
}

func (p *Presenter) onSave() {
	name := config.DefaultSaveName(p.opts.Now())
	p.view.ChooseSavePath(name, p.opts.InitialDir, func(path string, err error) {
		if p.finished() {
			p.logger.Info("save chooser returned after dialog finished, ignoring", "state", p.state, "path", path)
			return
		}
		if errors.Is(err, ErrChooserCancelled) {
			return
		}
		if err != nil {
			p.logger.Error("error in file dialog", "err", err)
			return
		}
		if err := p.save(path); err != nil {
			p.logger.Error("save failed", "err", err)
			p.view.ShowError(err)
			return
		}
		p.logger.Info("text saved", "path", path)
		p.state = StateSaved
		if !p.opts.KeepOpen {
			p.quit()
		}
	})
}

func (p *Presenter) save(path string) error {
	if err := os.WriteFile(path, []byte(p.view.Text()), 0644); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

func (p *Presenter) onCopy() {
	text := p.view.Text()
	if err := p.clip.Write(text); err != nil {
		p.logger.Error("clipboard write failed", "err", err)
		p.view.ShowError(fmt.Errorf("Error copying text: %w", err))
		return
	}
	p.logger.Info("text copied to clipboard", "chars", len(text))
	p.view.ShowToast(CopiedToast)
	p.state = StateCopied
	if !p.opts.KeepOpen {
		// Give the clipboard owner time to hand the selection over.
		p.opts.AfterFunc(p.opts.CopyGrace, func() { p.opts.Do(p.quitAfterCopy) })
	}
}

func (p *Presenter) quitAfterCopy() {
	if p.finished() {
		p.logger.Debug("copy grace elapsed after dialog finished", "state", p.state)
		return
	}
	p.quit()
}

func (p *Presenter) onRetake() {
	p.state = StateRetaken
	p.view.Close()
	if p.hooks.Retake != nil {
		p.hooks.Retake()
	}
}

func (p *Presenter) onClose() {
	p.logger.Info("text from dialog", "text", logutil.Escape(p.view.Text()))
	p.state = StateClosed
	p.quit()
}

func (p *Presenter) quit() {
	if p.hooks.Quit != nil {
		p.hooks.Quit()
	}
}
