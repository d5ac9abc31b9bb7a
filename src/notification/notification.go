// Package notification reports failures that happen while no dialog is shown.
package notification

import (
	"fyne.io/fyne/v2"
)

const (
	Title      = "Screenshot OCR"
	maxMessage = 200
)

// Sender is satisfied by fyne.App.
type Sender interface {
	SendNotification(*fyne.Notification)
}

// ShowError sends a desktop notification describing err.
func ShowError(s Sender, err error) {
	s.SendNotification(fyne.NewNotification(Title, Truncate(err.Error())))
}

// Truncate shortens text to what a notification bubble can hold.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) > maxMessage {
		return string(r[:maxMessage]) + "..."
	}
	return text
}
