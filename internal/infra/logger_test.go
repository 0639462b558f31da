package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerJSONLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", "", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("user_id", "u1").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["service"] != "quotestudio" || entry["env"] != "production" || entry["user_id"] != "u1" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewLoggerLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", "warn", &buf)
	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn: %s", buf.String())
	}
	logger.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("warn should be written")
	}

	buf.Reset()
	fallback := newLogger("production", "not-a-level", &buf)
	fallback.Info().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("unknown level should keep the default")
	}
}

func TestNewLoggerTestIsSilent(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("test", "debug", &buf)
	logger.Error().Msg("nothing")
	if buf.Len() != 0 {
		t.Fatalf("test logger wrote %q", buf.String())
	}
}
