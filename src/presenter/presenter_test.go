package presenter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"screenshot-ocr/src/logutil"
)

type fakeView struct {
	text string
	// deferChoice holds the chooser callback until the test releases it.
	deferChoice bool
	pending     func(string, error)
	choosePath  string
	chooseErr   error
	gotName     string
	gotDir      string
	errors      []error
	toasts      []string
	closed      int
}

func (v *fakeView) Text() string { return v.text }

func (v *fakeView) ChooseSavePath(defaultName, initialDir string, done func(string, error)) {
	v.gotName, v.gotDir = defaultName, initialDir
	if v.deferChoice {
		v.pending = done
		return
	}
	done(v.choosePath, v.chooseErr)
}

func (v *fakeView) ShowError(err error)  { v.errors = append(v.errors, err) }
func (v *fakeView) ShowToast(msg string) { v.toasts = append(v.toasts, msg) }
func (v *fakeView) Close()               { v.closed++ }

type memClipboard struct {
	text string
	err  error
}

func (c *memClipboard) Write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type harness struct {
	view     *fakeView
	clip     *memClipboard
	p        *Presenter
	quits    int
	retakes  int
	delays   []time.Duration
	deferred []func()
}

func newHarness(text string, opts Options) *harness {
	h := &harness{view: &fakeView{text: text}, clip: &memClipboard{}}
	opts.AfterFunc = func(d time.Duration, f func()) {
		h.delays = append(h.delays, d)
		h.deferred = append(h.deferred, f)
	}
	opts.Now = func() time.Time { return time.Date(2026, time.October, 19, 14, 30, 0, 0, time.UTC) }
	h.p = New(h.view, h.clip, Hooks{
		Quit:   func() { h.quits++ },
		Retake: func() { h.retakes++ },
	}, opts, logutil.Discard())
	return h
}

func (h *harness) fireTimers() {
	for _, f := range h.deferred {
		f()
	}
	h.deferred = nil
}

func TestCopyQuitsAfterGrace(t *testing.T) {
	h := newHarness("Hello World", Options{CopyGrace: 2100 * time.Millisecond})

	h.p.Dispatch(EventCopy)

	if h.clip.text != "Hello World" {
		t.Errorf("Expected clipboard 'Hello World', got %q", h.clip.text)
	}
	if len(h.view.toasts) != 1 || h.view.toasts[0] != CopiedToast {
		t.Errorf("Expected copy toast, got %v", h.view.toasts)
	}
	if h.quits != 0 {
		t.Fatal("Quit must wait for the grace delay")
	}
	if len(h.delays) != 1 || h.delays[0] != 2100*time.Millisecond {
		t.Errorf("Expected one 2.1s timer, got %v", h.delays)
	}
	h.fireTimers()
	if h.quits != 1 {
		t.Errorf("Expected quit after grace, got %d", h.quits)
	}
	if h.p.State() != StateCopied {
		t.Errorf("Expected state copied, got %v", h.p.State())
	}
}

func TestCopyKeepOpen(t *testing.T) {
	h := newHarness("text", Options{KeepOpen: true})

	h.p.Dispatch(EventCopy)
	h.fireTimers()

	if h.quits != 0 || len(h.delays) != 0 {
		t.Errorf("Keep-open must not schedule quit: quits=%d delays=%v", h.quits, h.delays)
	}
	// The dialog stays usable.
	h.view.text = "edited"
	h.p.Dispatch(EventCopy)
	if h.clip.text != "edited" {
		t.Errorf("Expected second copy to use edited text, got %q", h.clip.text)
	}
}

func TestCopyFailureShowsError(t *testing.T) {
	h := newHarness("text", Options{})
	h.clip.err = errors.New("no display")

	h.p.Dispatch(EventCopy)

	if len(h.view.errors) != 1 || h.quits != 0 || len(h.delays) != 0 {
		t.Errorf("Expected error dialog and no quit, got errors=%v quits=%d", h.view.errors, h.quits)
	}
	if h.p.State() != StateShown {
		t.Errorf("Expected state shown, got %v", h.p.State())
	}
}

func TestSaveWritesEditedText(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")
	h := newHarness("original", Options{InitialDir: dir})
	h.view.choosePath = target
	h.view.text = "user edited\ntext"

	h.p.Dispatch(EventSave)

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("Expected file to be written: %v", err)
	}
	if string(data) != "user edited\ntext" {
		t.Errorf("Unexpected file content %q", data)
	}
	if h.view.gotName != "clipboard_14-30_26-10.txt" || h.view.gotDir != dir {
		t.Errorf("Unexpected chooser seed name=%q dir=%q", h.view.gotName, h.view.gotDir)
	}
	if h.quits != 1 || h.p.State() != StateSaved {
		t.Errorf("Expected quit after save, quits=%d state=%v", h.quits, h.p.State())
	}
}

func TestSaveKeepOpen(t *testing.T) {
	h := newHarness("x", Options{KeepOpen: true})
	h.view.choosePath = filepath.Join(t.TempDir(), "out.txt")

	h.p.Dispatch(EventSave)

	if h.quits != 0 || h.p.State() != StateSaved {
		t.Errorf("Expected saved without quit, quits=%d state=%v", h.quits, h.p.State())
	}
}

func TestSaveToMissingDirectoryIsRecoverable(t *testing.T) {
	h := newHarness("x", Options{})
	h.view.choosePath = "/no/such/dir/out.txt"

	h.p.Dispatch(EventSave)

	if len(h.view.errors) != 1 {
		t.Fatalf("Expected one error dialog, got %v", h.view.errors)
	}
	var serr *SaveError
	if !errors.As(h.view.errors[0], &serr) || serr.Path != "/no/such/dir/out.txt" {
		t.Errorf("Expected SaveError, got %v", h.view.errors[0])
	}
	if h.quits != 0 || h.view.closed != 0 || h.p.State() != StateShown {
		t.Errorf("Dialog must stay open: quits=%d closed=%d state=%v", h.quits, h.view.closed, h.p.State())
	}

	// A retry to a valid path succeeds.
	h.view.choosePath = filepath.Join(t.TempDir(), "out.txt")
	h.p.Dispatch(EventSave)
	if h.quits != 1 {
		t.Errorf("Expected quit after successful retry, got %d", h.quits)
	}
}

func TestSaveChooserCancelledOrFailed(t *testing.T) {
	for _, chooseErr := range []error{ErrChooserCancelled, errors.New("portal gone")} {
		h := newHarness("x", Options{})
		h.view.chooseErr = chooseErr

		h.p.Dispatch(EventSave)

		if h.quits != 0 || len(h.view.errors) != 0 || h.p.State() != StateShown {
			t.Errorf("%v: expected nothing to happen, quits=%d errors=%v", chooseErr, h.quits, h.view.errors)
		}
	}
}

func TestRetake(t *testing.T) {
	h := newHarness("x", Options{})

	h.p.Dispatch(EventRetake)

	if h.view.closed != 1 || h.retakes != 1 || h.quits != 0 {
		t.Errorf("Expected close+retake, closed=%d retakes=%d quits=%d", h.view.closed, h.retakes, h.quits)
	}
	if h.p.State() != StateRetaken {
		t.Errorf("Expected state retaken, got %v", h.p.State())
	}
	// Events after retake are ignored.
	h.p.Dispatch(EventClose)
	if h.quits != 0 {
		t.Error("Close after retake must be ignored")
	}
}

func TestCloseQuits(t *testing.T) {
	h := newHarness("bye", Options{KeepOpen: true})

	h.p.Dispatch(EventClose)

	if h.quits != 1 || h.p.State() != StateClosed {
		t.Errorf("Expected quit on close even when kept open, quits=%d state=%v", h.quits, h.p.State())
	}
	h.p.Dispatch(EventCopy)
	if h.clip.text != "" {
		t.Error("Copy after close must be ignored")
	}
}

func TestChooserReturningAfterRetakeIsIgnored(t *testing.T) {
	for _, finish := range []Event{EventRetake, EventClose} {
		t.Run(finish.String(), func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "late.txt")
			h := newHarness("x", Options{})
			h.view.deferChoice = true
			h.view.choosePath = target

			h.p.Dispatch(EventSave)
			h.p.Dispatch(finish)
			quitsBefore := h.quits
			h.view.pending(target, nil)

			if _, err := os.Stat(target); !os.IsNotExist(err) {
				t.Errorf("File must not be written after %v, stat err=%v", finish, err)
			}
			if h.quits != quitsBefore {
				t.Errorf("Late chooser must not quit, quits %d -> %d", quitsBefore, h.quits)
			}
			if h.p.State() == StateSaved {
				t.Errorf("State must stay %v", h.p.State())
			}
		})
	}
}

func TestCopyGraceAfterRetakeDoesNotQuit(t *testing.T) {
	h := newHarness("x", Options{CopyGrace: 2100 * time.Millisecond})

	h.p.Dispatch(EventCopy)
	h.p.Dispatch(EventRetake)
	h.fireTimers()

	if h.quits != 0 {
		t.Errorf("Grace timer must not quit a retaken dialog, quits=%d", h.quits)
	}
	if h.retakes != 1 || h.p.State() != StateRetaken {
		t.Errorf("Expected retake to stand, retakes=%d state=%v", h.retakes, h.p.State())
	}
}

func TestGraceQuitRunsThroughDo(t *testing.T) {
	var posted int
	h := newHarness("x", Options{Do: func(f func()) { posted++; f() }})

	h.p.Dispatch(EventCopy)
	h.fireTimers()

	if posted != 1 || h.quits != 1 {
		t.Errorf("Expected quit posted once through Do, posted=%d quits=%d", posted, h.quits)
	}
}

func TestEventString(t *testing.T) {
	if EventSave.String() != "save" || Event(42).String() != "Event(42)" {
		t.Errorf("Unexpected event names %q %q", EventSave, Event(42))
	}
}

func TestStateString(t *testing.T) {
	if StateRetaken.String() != "retaken" || State(9).String() != "State(9)" {
		t.Errorf("Unexpected state names %q %q", StateRetaken, State(9))
	}
}
