package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "WARNING", want: slog.LevelWarn},
		{input: "warn", want: slog.LevelWarn},
		{input: "ERROR", want: slog.LevelError},
		{input: "Critical", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLevel(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetupWriterDropsEmptyAttrs(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := SetupWriter(&buf, slog.LevelInfo, true)
	logger.Info("record applied", "name", "Acme", "error", "", "since", time.Time{}, "count", 0)
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "record applied") || !strings.Contains(out, "name=Acme") {
		t.Errorf("missing message or attribute: %q", out)
	}
	if strings.Contains(out, "error=") || strings.Contains(out, "since=") {
		t.Errorf("empty attributes were not dropped: %q", out)
	}
	if !strings.Contains(out, "count=0") {
		t.Errorf("zero count was dropped: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %q", out)
	}
}
