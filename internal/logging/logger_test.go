package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/skipfix/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	var out, errOut bytes.Buffer
	l.SetOutput(&out, &errOut)

	l.Info("test message")
	l.Error("bad thing")
	l.Debug(false, "hidden")

	if !strings.Contains(out.String(), "[INFO] test message") {
		t.Errorf("stdout = %q", out.String())
	}
	if strings.Contains(out.String(), "bad thing") {
		t.Error("ERROR line went to stdout")
	}
	if !strings.Contains(errOut.String(), "[ERROR] bad thing") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Error("Debug(false) should not log")
	}
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "skipfix.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	l.SetRunID("run-123")
	l.Info("to file")
	l.Warn("careful")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log entries, want 2: %s", len(lines), b)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["msg"] != "to file" || entry["run_id"] != "run-123" || entry["level"] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if !strings.Contains(lines[1], `"level":"warn"`) {
		t.Errorf("second entry = %s", lines[1])
	}
}

func TestClose_Idempotent(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "x.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
