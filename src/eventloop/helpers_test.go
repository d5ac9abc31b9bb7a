package eventloop

import (
	"context"
	"os"
)

type fixedAcquirer string

func (a fixedAcquirer) Capture(context.Context) (string, error) { return string(a), nil }

func writeFile(path string) error { return os.WriteFile(path, []byte("png"), 0600) }

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
