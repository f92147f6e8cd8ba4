package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLog(t *testing.T, dataDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dataDir, "logs", "alarmist.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func TestInitCreatesRotatingLogFile(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "alarmist")

	if err := Init(Config{DataDir: dataDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Init")
	}

	Warn("audio layer failed", "layer", "tone")
	out := readLog(t, dataDir)
	if !strings.Contains(out, "audio layer failed") || !strings.Contains(out, "layer=tone") {
		t.Errorf("log file = %q, want warning with layer key", out)
	}
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantDebug bool
	}{
		{name: "default level drops debug", debug: false, wantDebug: false},
		{name: "debug level keeps debug", debug: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir := t.TempDir()
			// Quiet keeps debug output off the test's stderr.
			if err := Init(Config{Debug: tt.debug, Quiet: true, DataDir: dataDir}); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			Debug("scheduler tick", "alarms", 2)
			Error("save failed")

			out := readLog(t, dataDir)
			if got := strings.Contains(out, "scheduler tick"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v", got, tt.wantDebug)
			}
			if !strings.Contains(out, "save failed") {
				t.Error("error line missing from log file")
			}
		})
	}
}

func TestWithCarriesFields(t *testing.T) {
	dataDir := t.TempDir()
	if err := Init(Config{DataDir: dataDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	With("alarm", "a1").Warn("teardown incomplete")
	if out := readLog(t, dataDir); !strings.Contains(out, "alarm=a1") {
		t.Errorf("log file = %q, want alarm=a1", out)
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	Logger = nil

	Debug("ignored")
	Info("ignored")
	Warn("ignored")
	Error("ignored")
	if l := With("layer", "tone"); l != nil {
		t.Errorf("With() before Init = %v, want nil", l)
	}
}
