package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/TobiSchelling/FeedPress/internal/config"
)

// Setup configures the standard logger. Verbose mode or level DEBUG adds
// file:line to every line. When cfg.File is set, output is also written to
// a rotating log file; the returned closer flushes it.
func Setup(cfg config.Logging, verbose bool) io.Closer {
	flags := log.LstdFlags
	if verbose || strings.EqualFold(cfg.Level, "DEBUG") {
		flags |= log.Lshortfile
	}
	log.SetFlags(flags)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		log.Printf("Cannot create log directory for %s: %v", cfg.File, err)
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
