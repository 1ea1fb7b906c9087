package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"example.com/rvlock/core/config"
	"example.com/rvlock/driver/uart"
)

func init() {
	log = zap.NewNop()
}

func TestRunProgramReference(t *testing.T) {
	e := &uart.Emulator{ShiftPolls: 1}
	v := runProgram(context.Background(), config.Default(), uart.New(e))
	if v != 4 {
		t.Errorf("final counter = %d, want 4", v)
	}
	out := e.String()
	if !strings.HasPrefix(out, "A\nStarting threads\nT1: Enter critical section\n") {
		t.Errorf("unexpected start of output: %q", out)
	}
	if !strings.HasSuffix(out, "T2: Exit critical section\nFinal Counter = 4\n") {
		t.Errorf("unexpected end of output: %q", out)
	}
}

func TestRunProgramConfigured(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rvlock.toml")
	err := os.WriteFile(p, []byte(`
threads = ["T1", "T2", "T3"]
rounds = 100
concurrent = true
`), 0o600)
	if err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg := loadConfig(p)

	e := &uart.Emulator{}
	v := runProgram(context.Background(), cfg, uart.New(e))
	if v != 300 {
		t.Errorf("final counter = %d, want 300", v)
	}
	if !strings.HasSuffix(e.String(), "Final Counter = 300\n") {
		t.Errorf("missing summary line")
	}
}

func TestRunBenchmark(t *testing.T) {
	var buf bytes.Buffer
	runBenchmark(&buf, 2, 100)
	if !strings.Contains(buf.String(), "Acquire latency") {
		t.Errorf("benchmark output lacks latency section: %q", buf.String())
	}
}

func TestOpenConsoleUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Console = "serial"
	_, _, err := openConsole(cfg)
	if err == nil {
		t.Errorf("openConsole accepted an unknown console")
	}
}

func TestCloseConsoleOrLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	defer func(l *zap.Logger) { log = l }(log)
	log = zap.New(core)

	closeConsoleOrLog(func() error { return nil })
	if logs.Len() != 0 {
		t.Errorf("successful close was logged")
	}
	closeConsoleOrLog(func() error { return errors.New("device busy") })
	if logs.FilterMessage("failed to close console").Len() != 1 {
		t.Errorf("failed close was not logged")
	}
}
