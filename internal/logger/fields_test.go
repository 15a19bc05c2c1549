package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestOracleFields(t *testing.T) {
	t.Parallel()

	fields := OracleFields("gemini", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	fields = OracleFields("  ", "gemini-2.5-flash")
	if len(fields) != 1 {
		t.Fatalf("expected blank provider to be omitted, got %d fields", len(fields))
	}
	if fields[0].Key != FieldModel {
		t.Fatalf("expected %q field, got %q", FieldModel, fields[0].Key)
	}

	if fields := OracleFields("", ""); len(fields) != 0 {
		t.Fatalf("expected no fields, got %d", len(fields))
	}
}

func TestWithOracleFieldsNilLogger(t *testing.T) {
	t.Parallel()

	logger := WithOracleFields(nil, "gemini", "")
	if logger == nil {
		t.Fatalf("expected a usable logger")
	}

	// Must not panic.
	logger.Info("fields attached", zap.String("check", "ok"))
}
