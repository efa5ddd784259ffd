package logging_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"keycycle/internal/platform/logging"
)

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New("test", "warn", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "C#")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestNewDefaultsUnknownLevelToInfo(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.New("test", "chatty", &buf)
	logger.Debug("quiet")
	logger.Info("loud")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "loud") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestOpenFileCreatesDirectories(t *testing.T) {
	t.Parallel()
	f, err := logging.OpenFile(filepath.Join(t.TempDir(), "nested", "app.log"))
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	_ = f.Close()
}
