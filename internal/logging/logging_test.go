package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("Expected json format, got %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo, FormatJSON)

	logger.Debug("hidden")
	logger.Info("extract done", "samples", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if entry["msg"] != "extract done" || entry["samples"] != float64(3) {
		t.Errorf("Unexpected entry %v", entry)
	}
	if ts, ok := entry["time"].(string); !ok || !strings.Contains(ts, "T") {
		t.Errorf("Expected RFC3339 time, got %v", entry["time"])
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug, FormatText)

	ctx := WithRunID(context.Background(), "01HXRUN")
	if RunID(ctx) != "01HXRUN" {
		t.Fatalf("RunID not stored")
	}
	FromContext(ctx, base).Info("hello")
	if !strings.Contains(buf.String(), "run_id=01HXRUN") {
		t.Errorf("Expected run_id attribute, got %q", buf.String())
	}

	if FromContext(context.Background(), base) != base {
		t.Error("Without a run ID the base logger should be returned")
	}
}

func TestDiscard(t *testing.T) {
	// must not panic
	Discard().Error("dropped")
}
