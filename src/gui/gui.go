package gui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"screenshot-ocr/src/notification"
	"screenshot-ocr/src/presenter"
)

const appID = "io.github.screenshot_ocr"

// App is the Fyne application. It shows no window until a result exists.
type App struct {
	fa fyne.App
	// holder is never shown or closed. The desktop driver quits once its last
	// window is destroyed, and Retake closes the only visible one.
	holder fyne.Window
	logger *slog.Logger
}

func New(logger *slog.Logger) *App {
	return newApp(app.NewWithID(appID), logger)
}

func newApp(fa fyne.App, logger *slog.Logger) *App {
	return &App{fa: fa, holder: fa.NewWindow(appID), logger: logger}
}

// Run blocks in the Fyne event loop; onStarted runs once the loop is live.
func (a *App) Run(onStarted func()) {
	a.fa.Lifecycle().SetOnStarted(onStarted)
	a.fa.Run()
}

// Do runs fn on the UI goroutine.
func (a *App) Do(fn func()) { fyne.Do(fn) }

func (a *App) Quit() {
	a.logger.Debug("quitting")
	a.fa.Quit()
}

// NotifyError reports err as a desktop notification.
func (a *App) NotifyError(err error) { notification.ShowError(a.fa, err) }

// NewView builds the result dialog around text. It is not visible until Show.
func (a *App) NewView(text string) presenter.Dialog {
	return newResultWindow(a.fa, text, a.logger)
}
