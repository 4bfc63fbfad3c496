package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", &buf)
	l.Debug("hidden")
	l.Info("evaluated", "domain", "chem")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "evaluated" || rec["domain"] != "chem" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestSetDefault(t *testing.T) {
	prev := Default
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(NewText("debug", &buf))
	Debug("placeholder", "latency", "10s")
	if !strings.Contains(buf.String(), "placeholder") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}
