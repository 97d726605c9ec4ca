package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Warn("history append failed", "error", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered, got %q", out)
	}
	if !strings.Contains(out, "err=boom") {
		t.Errorf("expected err=boom in %q", out)
	}
}
