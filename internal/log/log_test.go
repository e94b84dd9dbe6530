package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oysterdash.log")

	if err := InitWithOptions(Options{File: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { baseLogger, log = nil, nil })

	Infow("trend computed", "points", 42)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"trend computed"`) || !strings.Contains(string(data), `"points":42`) {
		t.Errorf("log file missing entry, got %q", string(data))
	}
}

func TestFallbackLogger(t *testing.T) {
	baseLogger, log = nil, nil

	if GetSugaredLogger() == nil {
		t.Fatal("expected a fallback sugared logger")
	}
	if GetZapLogger() == nil {
		t.Fatal("expected a fallback zap logger")
	}
}
