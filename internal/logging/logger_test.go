package logging

import "testing"

func TestNewLoggerAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", " INFO "} {
		logger, err := NewLogger(level)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", level, err)
		}
		if logger == nil {
			t.Fatalf("expected logger for %q", level)
		}
	}
}

func TestNewLoggerFallsBackOnUnknownLevel(t *testing.T) {
	logger, err := NewLogger("verbose")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatalf("expected fallback logger")
	}
}
