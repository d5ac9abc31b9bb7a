package gui

import (
	"errors"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"screenshot-ocr/src/presenter"
)

const toastDuration = 2 * time.Second

// resultWindow shows the extracted text with Save / Copy / Retake buttons.
type resultWindow struct {
	fa       fyne.App
	win      fyne.Window
	entry    *widget.Entry
	status   *widget.Label
	dispatch func(presenter.Event)
	logger   *slog.Logger
}

func newResultWindow(fa fyne.App, text string, logger *slog.Logger) *resultWindow {
	w := &resultWindow{fa: fa, logger: logger}
	w.win = fa.NewWindow("Extracted Text")
	w.win.Resize(fyne.NewSize(500, 400))

	w.entry = widget.NewMultiLineEntry()
	w.entry.Wrapping = fyne.TextWrapWord
	w.entry.SetText(text)

	w.status = widget.NewLabel("")
	w.status.Alignment = fyne.TextAlignCenter

	buttons := container.NewGridWithColumns(3,
		widget.NewButton("Save to File", func() { w.emit(presenter.EventSave) }),
		widget.NewButton("Copy to Clipboard", func() { w.emit(presenter.EventCopy) }),
		widget.NewButton("Retake Screenshot", func() { w.emit(presenter.EventRetake) }),
	)

	w.win.SetContent(container.NewBorder(nil, container.NewVBox(w.status, buttons), nil, nil, w.entry))
	// Only user-initiated closes arrive here; Close below bypasses it.
	w.win.SetCloseIntercept(func() { w.emit(presenter.EventClose) })
	return w
}

func (w *resultWindow) Bind(dispatch func(presenter.Event)) { w.dispatch = dispatch }

func (w *resultWindow) Show() {
	w.win.Show()
	w.win.RequestFocus()
}

func (w *resultWindow) emit(ev presenter.Event) {
	if w.dispatch == nil {
		w.logger.Warn("dialog event before bind", "event", ev)
		return
	}
	w.dispatch(ev)
}

func (w *resultWindow) Text() string { return w.entry.Text }

func (w *resultWindow) ShowError(err error) {
	dialog.ShowError(err, w.win)
}

func (w *resultWindow) ShowToast(msg string) {
	w.status.SetText(msg)
	time.AfterFunc(toastDuration, func() {
		fyne.Do(func() {
			if w.status.Text == msg {
				w.status.SetText("")
			}
		})
	})
}

func (w *resultWindow) Close() { w.win.Close() }

func (w *resultWindow) ChooseSavePath(defaultName, initialDir string, done func(string, error)) {
	go func() {
		path, err := portalSavePath(defaultName, initialDir)
		fyne.Do(func() {
			if errors.Is(err, presenter.ErrChooserCancelled) {
				done("", err)
				return
			}
			if err != nil {
				w.logger.Warn("file chooser portal failed, using built-in dialog", "err", err)
				w.fyneSavePath(defaultName, initialDir, done)
				return
			}
			done(path, nil)
		})
	}()
}
