package types

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want req-123", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q, want empty", got)
	}
}

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-9")
	if got := GetRunID(ctx); got != "run-9" {
		t.Errorf("GetRunID() = %q, want run-9", got)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Errorf("GetRunID() on empty context = %q, want empty", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if LoggerFromContext(context.Background()) != slog.Default() {
		t.Error("expected slog.Default() when no logger is stored")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)
	LoggerFromContext(ctx).Info("hello", "run_id", "r1")

	if !strings.Contains(buf.String(), `"run_id":"r1"`) {
		t.Errorf("stored logger was not used, output: %s", buf.String())
	}
}
