package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"screenshot-ocr/src/config"
	"screenshot-ocr/src/eventloop"
	"screenshot-ocr/src/gui"
	"screenshot-ocr/src/runtimeinit"
	"screenshot-ocr/src/singleinstance"
)

type mainOptions struct {
	enableSaving   bool
	keepOpen       bool
	lang           string
	saveLocation   string
	captureBackend string
	logSink        string
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		RetainFile:     o.enableSaving,
		KeepOpen:       o.keepOpen,
		Lang:           o.lang,
		SaveLocation:   o.saveLocation,
		CaptureBackend: o.captureBackend,
		LogSink:        o.logSink,
	}
}

func main() {
	// Fyne wants the main goroutine on the main OS thread.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := normalizeLegacyArgs(os.Args)
	if len(args) == 0 {
		args = []string{"screenshot-ocr"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screenshot-ocr",
		Short:         "Take a screenshot and extract its text via QR code or OCR",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.enableSaving, "enablesaving", false, "Keep the screenshot file after processing")
	cmd.Flags().BoolVar(&opts.keepOpen, "nocloseonaction", false, "Keep the dialog open after Save or Copy")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Tesseract languages, e.g. eng+deu (default: all installed)")
	cmd.Flags().StringVar(&opts.saveLocation, "save-location", "", "Initial directory for the save dialog")
	cmd.Flags().StringVar(&opts.captureBackend, "capture-backend", "", "Screenshot backend: portal or screen")
	cmd.Flags().StringVar(&opts.logSink, "log-sink", "", "Log destination: syslog, stderr, file or none")

	return cmd
}

func runApp(opts mainOptions) error {
	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{LoadOptions: opts.loadOptions()})
	if err != nil {
		return err
	}
	logger := rt.Logger

	app := gui.New(logger)
	loop := eventloop.New(rt.Config, app, rt.Clipboard, rt.Pass, logger)
	defer loop.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	guard, err := singleinstance.Acquire(ctx, loop.Raise, logger)
	cancel()
	switch {
	case errors.Is(err, singleinstance.ErrAlreadyRunning):
		logger.Info("screenshot-ocr already running, raised existing dialog")
		return nil
	case err != nil:
		logger.Warn("single instance guard unavailable", "err", err)
	default:
		defer guard.Close()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if sig, ok := <-sigs; ok {
			logger.Info("signal received, quitting", "signal", sig.String())
			app.Do(app.Quit)
		}
	}()

	app.Run(loop.Start)
	logger.Info("screenshot-ocr exiting")
	return nil
}

// normalizeLegacyArgs maps single-dash long flags (-lang eng) to the double-dash
// form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	longFlags := []string{"enablesaving", "nocloseonaction", "lang", "save-location", "capture-backend", "log-sink"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range longFlags {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
