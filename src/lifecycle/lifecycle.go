package lifecycle

import (
	"log/slog"
	"os"
)

// Manager removes captured images once their text has been extracted.
type Manager struct {
	Retain bool
	Logger *slog.Logger
}

func New(retain bool, logger *slog.Logger) *Manager {
	return &Manager{Retain: retain, Logger: logger}
}

// Cleanup deletes path unless the manager retains files. Failures are logged
// and otherwise ignored.
func (m *Manager) Cleanup(path string) {
	if path == "" {
		return
	}
	if m.Retain {
		m.Logger.Info("screenshot kept", "path", path)
		return
	}
	if err := os.Remove(path); err != nil {
		m.Logger.Error("failed to delete screenshot", "path", path, "err", err)
		return
	}
	m.Logger.Debug("screenshot deleted", "path", path)
}
