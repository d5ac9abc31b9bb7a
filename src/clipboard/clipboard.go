package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
)

// Writer places plain text on a clipboard. Implementations that cannot fail
// return nil.
type Writer interface {
	Write(text string) error
}

func Init() error {
	return clipboard.Init()
}

// System is the desktop clipboard. Init must have succeeded first.
type System struct{}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
// It always returns nil: the library reports no write errors, and a missing
// display already fails Init. On X11 the process keeps serving the selection
// until it exits, so callers should linger briefly before quitting.
func (System) Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
