package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		" INFO ":  zap.InfoLevel,
		"warning": zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"":        zap.InfoLevel,
		"loud":    zap.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("text") != FormatText || ParseFormat("console") != FormatText {
		t.Fatalf("expected text format")
	}
	if ParseFormat("") != FormatJSON || ParseFormat("json") != FormatJSON {
		t.Fatalf("expected json format by default")
	}
}

func TestNew(t *testing.T) {
	l, err := New(Options{Level: zap.WarnLevel, Format: FormatText, App: "medication-timeline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !l.Core().Enabled(zap.ErrorLevel) {
		t.Fatalf("error must be enabled at warn level")
	}
}
