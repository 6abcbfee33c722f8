package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}
}

func TestWithProvider(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithProvider(zap.New(core), "gemini", "gemini-2.5-flash").Info("scored")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider gemini, got %v", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("expected model gemini-2.5-flash, got %v", ctx[FieldModel])
	}

	// nil logger falls back to a no-op one.
	WithProvider(nil, "gemini", "m").Info("another log")
}

func TestSessionFields(t *testing.T) {
	fields := SessionFields("mock-1", "", "u1")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldInterviewID || fields[0].String != "mock-1" {
		t.Fatalf("unexpected interview field: %+v", fields[0])
	}

	if fields[1].Key != FieldUserID || fields[1].String != "u1" {
		t.Fatalf("unexpected user field: %+v", fields[1])
	}
}

func TestComponent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	Component(zap.New(core), "recorder").Info("started")

	if got := observed.All()[0].LoggerName; got != "recorder" {
		t.Fatalf("expected logger name recorder, got %q", got)
	}

	if Component(nil, "x") == nil {
		t.Fatal("expected fallback logger")
	}
}
