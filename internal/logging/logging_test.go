package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewHandlerLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		h := newHandler(&bytes.Buffer{}, tt.level, "json")
		if !h.Enabled(context.Background(), tt.want) {
			t.Errorf("level %q: %v not enabled", tt.level, tt.want)
		}
		if h.Enabled(context.Background(), tt.want-1) {
			t.Errorf("level %q: %v enabled", tt.level, tt.want-1)
		}
	}
}

func TestNewHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler(&buf, "info", "json")).Info("assessment complete", "fatalities", 120)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if rec["msg"] != "assessment complete" || rec["fatalities"] != float64(120) {
		t.Errorf("record = %v", rec)
	}

	buf.Reset()
	slog.New(newHandler(&buf, "info", "text")).Info("assessment complete", "fatalities", 120)
	if out := buf.String(); !strings.Contains(out, `msg="assessment complete"`) || !strings.Contains(out, "fatalities=120") {
		t.Errorf("text output = %q", out)
	}
}
