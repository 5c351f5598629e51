package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsKeyValueLine(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("added to collection", "component", "sync", "title", "Arrival", "year", 2016)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO sync: added to collection") {
		t.Errorf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "title=Arrival") || !strings.Contains(line, "year=2016") {
		t.Errorf("attrs missing from line: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Warn("no library match", "title", "The Batman")

	if !strings.Contains(buf.String(), `title="The Batman"`) {
		t.Errorf("value not quoted: %q", buf.String())
	}
}

func TestConsoleHandlerGroupsPrefixKeys(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false)).WithGroup("plex")

	logger.Info("connected", "url", "http://plex.local:32400")

	if !strings.Contains(buf.String(), "plex.url=") {
		t.Errorf("group prefix missing: %q", buf.String())
	}
}

func TestConsoleHandlerCarriesBoundAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false)).With("run_id", "abc-123")

	logger.Info("sync finished", "added", 2)

	line := buf.String()
	if !strings.Contains(line, "run_id=abc-123") || !strings.Contains(line, "added=2") {
		t.Errorf("bound attrs missing: %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("suppressed")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info record not suppressed: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reelist.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("sync complete", "added", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, data)
	}
	if record["msg"] != "sync complete" || record["level"] != "info" {
		t.Errorf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Errorf("record missing ts: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
