package logging

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" DEBUG ": zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogrVerbosity(t *testing.T) {
	if !NewLogr("debug").V(1).Enabled() {
		t.Fatalf("expected V(1) enabled at debug level")
	}
	if NewLogr("info").V(1).Enabled() {
		t.Fatalf("expected V(1) disabled at info level")
	}
}

func TestNewFallsBackToDefault(t *testing.T) {
	l := New(logr.Logger{})
	if l.Logr().GetSink() == nil {
		t.Fatalf("expected default sink")
	}
	// Discard must be safe to use everywhere a Logger is accepted.
	Discard().WithName("test").WithValues("k", "v").Info("ignored")
}

func TestStdLogWritesThroughZap(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	l := New(zapr.NewLogger(zap.New(core))).WithName("stdio").WithValues("tool", "getStockQuote")

	l.StdLog().Print("broken pipe")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %v", entries[0].Level)
	}
	if entries[0].Message != "broken pipe" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	if entries[0].LoggerName != "stdio" {
		t.Fatalf("unexpected logger name %q", entries[0].LoggerName)
	}
	if entries[0].ContextMap()["tool"] != "getStockQuote" {
		t.Fatalf("expected tool field, got %v", entries[0].ContextMap())
	}
}

func TestStdLogRespectsLevel(t *testing.T) {
	core, recorded := observer.New(zapcore.FatalLevel)
	New(zapr.NewLogger(zap.New(core))).StdLog().Print("dropped")
	if recorded.Len() != 0 {
		t.Fatalf("expected entry below level to be dropped")
	}
	// No zap sink: must not panic.
	Discard().StdLog().Print("ignored")
}
