package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func initTo(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var stderr bytes.Buffer
	cfg.ConfigDir = filepath.Join(t.TempDir(), "config")
	cfg.Stderr = &stderr
	if err := Init(cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Logger = log.New(io.Discard) })
	return &stderr
}

func TestInit_CreatesLogDir(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(configDir, "logs")); err != nil {
		t.Errorf("log directory missing: %v", err)
	}
}

func TestPath(t *testing.T) {
	want := filepath.Join("/tmp/cfg", "logs", "smartsteps.log")
	if got := Path("/tmp/cfg"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestStderrOutput(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		emit    func()
		wantOut string
	}{
		{"debug mode mirrors entries", Config{Debug: true}, func() { Debug("habit incremented", "id", "h1") }, "habit incremented"},
		{"quiet mode stays off the terminal", Config{}, func() { Warn("only in the file") }, ""},
		{"level override drops debug", Config{Debug: true, Level: "error"}, func() { Info("dropped") }, ""},
		{"level override keeps errors", Config{Debug: true, Level: "error"}, func() { Error("kept") }, "kept"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := initTo(t, tt.cfg)
			tt.emit()
			if tt.wantOut == "" && stderr.Len() != 0 {
				t.Errorf("stderr = %q, want empty", stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantOut) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantOut)
			}
		})
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	if err := Init(Config{ConfigDir: configDir, Level: "loud"}); err == nil {
		t.Error("Init() should reject an unknown level")
	}
	if Logger.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", Logger.GetLevel())
	}
}

func TestLogBeforeInit(t *testing.T) {
	Logger = log.New(io.Discard)
	Debug("dropped")
	Info("dropped")
	Warn("dropped")
	Error("dropped")
}
