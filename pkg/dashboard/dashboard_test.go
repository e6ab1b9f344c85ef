package dashboard

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	w := logWriter{logger: log}

	n, err := w.Write([]byte("gio: http://localhost:3000: Operation not supported"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != len("gio: http://localhost:3000: Operation not supported") {
		t.Errorf("Expected full write, got %d bytes", n)
	}
	if !strings.Contains(buf.String(), "Operation not supported") {
		t.Errorf("Expected helper output in debug log, got %q", buf.String())
	}
}
