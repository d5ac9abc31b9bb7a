package gui

import (
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/rymdport/portal/filechooser"

	"screenshot-ocr/src/presenter"
)

const saveTitle = "Save Extracted Text"

// portalSavePath asks the FileChooser portal for a target path. It blocks and
// must not run on the UI goroutine.
func portalSavePath(defaultName, initialDir string) (string, error) {
	uris, err := filechooser.SaveFile("", saveTitle, &filechooser.SaveFileOptions{
		AcceptLabel:   "Save",
		CurrentName:   defaultName,
		CurrentFolder: initialDir,
	})
	if err != nil {
		return "", err
	}
	if len(uris) == 0 {
		return "", presenter.ErrChooserCancelled
	}
	return localPath(uris[0])
}

// localPath strips the scheme from an already unescaped file URI.
func localPath(uri string) (string, error) {
	const scheme = "file://"
	if !strings.HasPrefix(uri, scheme) {
		return "", fmt.Errorf("file chooser returned non-local uri %q", uri)
	}
	return strings.TrimPrefix(uri, scheme), nil
}

func (w *resultWindow) fyneSavePath(defaultName, initialDir string, done func(string, error)) {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			done("", err)
			return
		}
		if wc == nil {
			done("", presenter.ErrChooserCancelled)
			return
		}
		// The presenter writes the file itself.
		path := wc.URI().Path()
		if cerr := wc.Close(); cerr != nil {
			done("", errors.Join(fmt.Errorf("close %s", path), cerr))
			return
		}
		done(path, nil)
	}, w.win)
	fd.SetFileName(defaultName)
	if initialDir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(initialDir)); err == nil {
			fd.SetLocation(lister)
		}
	}
	fd.SetConfirmText("Save")
	fd.Show()
}
