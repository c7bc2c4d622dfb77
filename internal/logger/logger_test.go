package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantInfo  bool
		wantDebug bool
	}{
		{"default", Options{}, true, false},
		{"verbose", Options{Verbose: true}, true, true},
		{"debug", Options{Debug: true}, true, true},
		{"quiet", Options{Quiet: true}, false, false},
		{"quiet verbose", Options{Quiet: true, Verbose: true}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(tt.opts, &buf)

			l.Info("info line")
			l.Debug("debug line")
			l.Warn("warn line")
			l.Error("error line")

			out := buf.String()
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info printed = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "[DEBUG] debug line"); got != tt.wantDebug {
				t.Errorf("debug printed = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, "[WARN] warn line") {
				t.Error("warnings must always be printed")
			}
			if !strings.Contains(out, "[ERROR] error line") {
				t.Error("errors must always be printed")
			}
		})
	}
}

func TestProgressBarHidesInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Options{}, &buf)
	l.SetProgressBar(true)

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no console output while bar is active, got %q", buf.String())
	}
}

func TestFileLogGetsEverything(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Options{Quiet: true}, &buf)

	path := filepath.Join(t.TempDir(), "run.log")
	if err := l.SetFileLog(path); err != nil {
		t.Fatalf("SetFileLog failed: %v", err)
	}

	l.Info("info line")
	l.Debug("debug line")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	for _, want := range []string{"info line", "[DEBUG] debug line"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q", want)
		}
	}
}
