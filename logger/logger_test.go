package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()

	log, err := NewLogger(Options{Dir: dir, Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}

	log.WithField("video_id", "dQw4w9WgXcQ").Info("transcript fetched")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), `"video_id":"dQw4w9WgXcQ"`) {
		t.Errorf("expected JSON entry in log file, got %s", data)
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log, err := NewLogger(Options{Level: "loud"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level, got %s", log.GetLevel())
	}
}

func TestNewLoggerConsoleWriter(t *testing.T) {
	var console strings.Builder

	log, err := NewLogger(Options{Dir: t.TempDir(), Level: "warn", Console: &console})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Info("hidden")
	log.Warn("fewer topics")

	out := console.String()
	if !strings.Contains(out, "fewer topics") {
		t.Errorf("expected warning on console, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info entry to be filtered, got %q", out)
	}
}
