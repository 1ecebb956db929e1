package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestInitWritesJSONL(t *testing.T) {
	logPath := initTestLog(t)

	Logger().Info("test_message", "key", "value")

	records := readLogRecords(t, logPath)
	if len(records) == 0 {
		t.Fatal("no records written")
	}
	r := records[0]
	if r["msg"] != "test_message" {
		t.Errorf("msg = %v, want test_message", r["msg"])
	}
	if r["key"] != "value" {
		t.Errorf("key = %v, want value", r["key"])
	}
}

func TestInitNonDebugDiscards(t *testing.T) {
	Shutdown()
	Init(Config{Debug: false})
	defer Shutdown()

	l := Logger()
	if l == nil {
		t.Fatal("expected non-nil logger even when output is discarded")
	}
	l.Info("this goes nowhere")
}

func TestForComponentTagsRecords(t *testing.T) {
	logPath := initTestLog(t)

	ForComponent(CompSession).Info("state_change", "from", "idle", "to", "running")

	records := readLogRecords(t, logPath)
	if len(records) == 0 {
		t.Fatal("no records written")
	}
	if records[0]["component"] != CompSession {
		t.Errorf("component = %v, want %s", records[0]["component"], CompSession)
	}
}

func TestForComponentBeforeInit(t *testing.T) {
	// Component loggers constructed before Init pick up the real handler
	// once Init runs.
	Shutdown()
	early := ForComponent(CompWeb)

	dir := t.TempDir()
	Init(Config{Debug: true, LogDir: dir})
	defer Shutdown()

	early.Info("late_bound")

	records := readLogRecords(t, filepath.Join(dir, "debug.log"))
	if len(records) == 0 {
		t.Fatal("pre-Init logger lost its output")
	}
	if records[0]["component"] != CompWeb {
		t.Errorf("component = %v, want %s", records[0]["component"], CompWeb)
	}
}

func TestLevelFiltering(t *testing.T) {
	Shutdown()
	dir := t.TempDir()
	Init(Config{Debug: true, LogDir: dir, Level: "warn"})
	defer Shutdown()

	Logger().Info("should_be_filtered")
	Logger().Warn("should_appear")

	records := readLogRecords(t, filepath.Join(dir, "debug.log"))
	for _, r := range records {
		if r["msg"] == "should_be_filtered" {
			t.Error("info record survived warn-level filtering")
		}
	}
	found := false
	for _, r := range records {
		if r["msg"] == "should_appear" {
			found = true
		}
	}
	if !found {
		t.Error("warn record missing")
	}
}

func TestTextFormat(t *testing.T) {
	Shutdown()
	dir := t.TempDir()
	Init(Config{Debug: true, LogDir: dir, Format: "text"})
	defer Shutdown()

	Logger().Info("text_format_test")

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err == nil {
		t.Error("text format produced valid JSON")
	}
}

func TestDumpRingBuffer(t *testing.T) {
	Shutdown()
	dir := t.TempDir()
	Init(Config{Debug: true, LogDir: dir, RingBufferSize: 1024})
	defer Shutdown()

	Logger().Info("ring_test_message")

	dumpPath := filepath.Join(dir, "crash-dump.jsonl")
	if err := DumpRingBuffer(dumpPath); err != nil {
		t.Fatalf("DumpRingBuffer: %v", err)
	}
	data, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	if len(data) == 0 {
		t.Error("crash dump is empty")
	}
}
