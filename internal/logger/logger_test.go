package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		isNil bool
	}{
		{in: "debug", want: "debug"},
		{in: "info", want: "info"},
		{in: "warn", want: "warn"},
		{in: "error", want: "error"},
		{in: "verbose", isNil: true},
		{in: "", isNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			if tt.isNil {
				if got != nil {
					t.Errorf("parseLevel(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWithFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shelf.log")

	log := NewWithFile("info", false, FileOptions{Path: path, MaxSizeMB: 1})
	log.Info("hello from test", String("component", "logger"))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"hello from test"`) {
		t.Errorf("log file missing entry: %s", out)
	}
	if !strings.Contains(out, `"component":"logger"`) {
		t.Errorf("log file missing field: %s", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("debug entry written at info level: %s", out)
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNop().With(String("k", "v"))
	log.Info("ignored")
	log.Errorf("ignored %d", 1)
}
