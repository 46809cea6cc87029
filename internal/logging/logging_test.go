package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TobiSchelling/FeedPress/internal/config"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "feedpress.log")
	closer := Setup(config.Logging{Level: "INFO", File: path}, false)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	log.Printf("hello from test")
	if err := closer.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("expected log line in file, got %q", data)
	}
	if log.Flags()&log.Lshortfile != 0 {
		t.Error("expected no file:line flag at INFO")
	}
}

func TestSetupDebugFlags(t *testing.T) {
	Setup(config.Logging{Level: "debug"}, false)
	t.Cleanup(func() { log.SetFlags(log.LstdFlags) })

	if log.Flags()&log.Lshortfile == 0 {
		t.Error("expected file:line flag at DEBUG")
	}
}
