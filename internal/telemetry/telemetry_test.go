package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"other": slog.LevelInfo,
	}
	for input, expected := range tests {
		if got := ParseLevel(input); got != expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "json")
	WithHolder(WithTask(logger, "copy"), "0/1").Info("done", "crawlers", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log: %v (%s)", err, buf.String())
	}
	if entry["task"] != "copy" || entry["holder"] != "0/1" || entry["msg"] != "done" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo, "text")

	ctx := WithLogger(context.Background(), WithRunID(logger, "run-1"))
	FromContext(ctx).Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("run_id=run-1")) {
		t.Errorf("expected run_id in output, got %s", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to default logger")
	}
}

func TestObserveWrapperRun(t *testing.T) {
	before := testutil.ToFloat64(TaskOutputs.WithLabelValues("test.observe"))
	ObserveWrapperRun("default", "test.observe", time.Now(), 3, nil)
	if got := testutil.ToFloat64(TaskOutputs.WithLabelValues("test.observe")); got != before+3 {
		t.Errorf("task outputs = %v, want %v", got, before+3)
	}

	failures := testutil.ToFloat64(WrapperFailures.WithLabelValues("default", "test.observe"))
	ObserveWrapperRun("default", "test.observe", time.Now(), 0, errors.New("boom"))
	if got := testutil.ToFloat64(WrapperFailures.WithLabelValues("default", "test.observe")); got != failures+1 {
		t.Errorf("failures = %v, want %v", got, failures+1)
	}
}
