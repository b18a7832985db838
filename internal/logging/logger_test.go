package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gofmask/internal/config"
	"gofmask/internal/logging"
	"gofmask/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "gofmask.log")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test")

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersOrdinalPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithOrdinal(context.Background(), 3)
	ctx = services.WithProduct(ctx, "/data/S2A_MSIL1C")
	jobLogger := logging.WithContext(ctx, logging.NewComponentLogger(logger, "dispatch"))
	jobLogger.Info("job finished", logging.String("status", "succeeded"))

	line := buf.String()
	if !strings.Contains(line, " INFO [3] dispatch: job finished") {
		t.Fatalf("expected ordinal prefix and component, got %q", line)
	}
	if !strings.Contains(line, "product=/data/S2A_MSIL1C") || !strings.Contains(line, "status=succeeded") {
		t.Fatalf("expected attributes in line, got %q", line)
	}
	if strings.Contains(line, "ordinal=") {
		t.Fatalf("ordinal should be rendered as a prefix only, got %q", line)
	}
}

func TestJSONLoggerKeepsOrdinalField(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WithContext(services.WithOrdinal(context.Background(), 2), logger).Info("started")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["msg"] != "started" || payload["level"] != "info" {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if payload["ordinal"] != float64(2) {
		t.Fatalf("expected ordinal=2, got %#v", payload["ordinal"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "staging kept", "staging_kept")
	out := buf.String()
	for _, want := range []string{"event_type=staging_kept", "error_hint=", "impact="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestErrorWithContextKeepsCallerHint(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.ErrorWithContext(logger, "job failed", "job_failed",
		logging.String(logging.FieldErrorHint, "rerun with --num-cpus 1"),
	)
	out := buf.String()
	if strings.Count(out, "error_hint=") != 1 || !strings.Contains(out, `error_hint="rerun with --num-cpus 1"`) {
		t.Fatalf("expected only the caller's hint in %q", out)
	}
	if !strings.Contains(out, "event_type=job_failed") {
		t.Fatalf("expected event_type in %q", out)
	}
}
