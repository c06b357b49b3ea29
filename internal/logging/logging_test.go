package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultSilent(t *testing.T) {
	if L().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger should be disabled")
	}
}

func TestSetAndRestore(t *testing.T) {
	orig := L()
	t.Cleanup(func() { Set(orig) })

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	L().Info("ring ready")
	if !strings.Contains(buf.String(), "ring ready") {
		t.Errorf("log output = %q, want message", buf.String())
	}

	Set(nil)
	if L() == nil {
		t.Fatal("L() returned nil after Set(nil)")
	}
	if L().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Set(nil) should restore the silent logger")
	}
}
