package internal

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		" debug ": LogLevelDebug,
		"TRACE":   LogLevelTrace,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := NewNopLogger()
	l.Error("error %d", 1)
	l.Info("info %s", "x")
	l.Debug("debug")
	if l.GetLevel() != LogLevelError {
		t.Errorf("expected nop logger at error level")
	}
}
