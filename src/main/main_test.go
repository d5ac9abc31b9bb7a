package main

import (
	"testing"

	"screenshot-ocr/src/config"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screenshot-ocr", "-enablesaving", "-lang", "eng+deu"},
			out:  []string{"screenshot-ocr", "--enablesaving", "--lang", "eng+deu"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screenshot-ocr", "-nocloseonaction=true", "-save-location=/tmp"},
			out:  []string{"screenshot-ocr", "--nocloseonaction=true", "--save-location=/tmp"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screenshot-ocr", "--lang", "-langx", "-h"},
			out:  []string{"screenshot-ocr", "--lang", "-langx", "-h"},
		},
		{
			name: "Skips the program name",
			in:   []string{"-lang", "-lang"},
			out:  []string{"-lang", "--lang"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	err := cmd.ParseFlags([]string{
		"--enablesaving", "--nocloseonaction",
		"--lang", "eng", "--save-location", "/tmp",
		"--capture-backend", "screen", "--log-sink", "stderr",
	})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	want := config.LoadOptions{
		RetainFile:     true,
		KeepOpen:       true,
		Lang:           "eng",
		SaveLocation:   "/tmp",
		CaptureBackend: "screen",
		LogSink:        "stderr",
	}
	if got := opts.loadOptions(); got != want {
		t.Fatalf("Expected %+v, got %+v", want, got)
	}
}

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if got := opts.loadOptions(); got != (config.LoadOptions{}) {
		t.Fatalf("Expected zero load options, got %+v", got)
	}
}
