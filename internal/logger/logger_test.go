package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestSecretsAreRedacted verifies secret-looking keys never reach the sink.
func TestSecretsAreRedacted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromCore(core)
	log.Info("client ready", "model", "gpt-4.1-mini", "api_key", "sk-live", "Authorization", "Bearer x")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["model"] != "gpt-4.1-mini" {
		t.Fatalf("expected model to pass through, got %v", fields["model"])
	}
	if fields["api_key"] != "[REDACTED]" || fields["Authorization"] != "[REDACTED]" {
		t.Fatalf("expected secrets redacted, got %v", fields)
	}
}

// TestWithCarriesFields verifies child loggers keep their fields.
func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromCore(core).With("item_id", "i1")
	log.Warn("dropped write", "qa_id", "q1")
	fields := logs.All()[0].ContextMap()
	if fields["item_id"] != "i1" || fields["qa_id"] != "q1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

// TestNilLoggerIsSafe verifies a nil logger swallows calls.
func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Info("ignored", "k", "v")
	log.Sync()
	if log.With("k", "v") != nil {
		t.Fatalf("expected nil child logger")
	}
}

// TestQuietModeDiscards verifies quiet mode builds a logger with no enabled level.
func TestQuietModeDiscards(t *testing.T) {
	log, err := New("quiet")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.SugaredLogger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected quiet logger to drop errors")
	}
}
