package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileLoggerCreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := NewFileLogger(dir)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.Info.Println("hello")
	logger.Error.Println("world")
	logger.Debug.Println("trace")

	for _, name := range []string{"server.log", "error.log", "debug.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	if Default.Info == nil || Default.Error == nil || Default.Debug == nil {
		t.Fatal("Default logger has nil severities")
	}
}
