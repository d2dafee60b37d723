package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelNone, "NONE"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"off", LevelNone},
		{"invalid", LevelNone},
		{"", LevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("ParseFormat(JSON) should be FormatJSON")
	}
	if ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("ParseFormat should default to FormatText")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatText,
		Output: &buf,
	})

	logger.Info("resolved", Fields{"kind": "builtin", "argc": 2})

	output := buf.String()
	if !strings.Contains(output, "INFO: resolved") {
		t.Errorf("output = %q, want level and message", output)
	}
	// Fields are written in key order
	if !strings.Contains(output, "argc=2 kind=builtin") {
		t.Errorf("output = %q, want sorted fields", output)
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Info("launch", Fields{"name": "ls"})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Level = %q, want %q", entry.Level, "INFO")
	}
	if entry.Message != "launch" {
		t.Errorf("Message = %q, want %q", entry.Message, "launch")
	}
	if entry.Fields["name"] != "ls" {
		t.Errorf("Fields[name] = %v, want %q", entry.Fields["name"], "ls")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelWarn,
		Format: FormatText,
		Output: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message", nil)

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out")
	}
	if strings.Contains(output, "info message") {
		t.Error("Info message should be filtered out")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be present")
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error message should be present")
	}
}

func TestLogger_ErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	logger.Error("launch failed", errors.New("exec format error"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	if entry.Error != "exec format error" {
		t.Errorf("Error = %q, want %q", entry.Error, "exec format error")
	}
}

func TestLogger_SetLevelAndEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelError,
		Format: FormatText,
		Output: &buf,
	})

	if logger.Enabled(LevelInfo) {
		t.Error("Info should not be enabled at Error level")
	}
	logger.Info("should not appear")
	if buf.Len() > 0 {
		t.Error("Info should be filtered at Error level")
	}

	logger.SetLevel(LevelInfo)
	if !logger.Enabled(LevelInfo) {
		t.Error("Info should be enabled after level change")
	}
	logger.Info("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Error("Info should appear after level change")
	}
}

func TestFieldLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: &buf,
	})

	session := logger.WithFields(Fields{"session": "abc"})
	child := session.WithFields(Fields{"component": "launcher"})
	child.Info("message", Fields{"extra": "field"})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	for k, want := range map[string]string{"session": "abc", "component": "launcher", "extra": "field"} {
		if entry.Fields[k] != want {
			t.Errorf("Fields[%s] = %v, want %q", k, entry.Fields[k], want)
		}
	}

	// The parent keeps only its own fields
	if _, ok := session.fields["component"]; ok {
		t.Error("child fields leaked into the parent logger")
	}
}

func TestLogger_NoneLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:  LevelNone,
		Format: FormatText,
		Output: &buf,
	})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error", nil)

	if buf.Len() > 0 {
		t.Error("No messages should be logged at None level")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	if logger.Enabled(LevelError) {
		t.Error("Nop logger should not be enabled at any level")
	}
	// Should not panic
	logger.Error("ignored", errors.New("boom"))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsh.log")

	logger, err := Open(path, LevelInfo, FormatText)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	logger.Info("first")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Writes after Close are dropped
	logger.Info("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "first") {
		t.Errorf("log file = %q, want the first message", data)
	}
	if strings.Contains(string(data), "after close") {
		t.Error("message logged after Close reached the file")
	}
}

func TestOpen_BadPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing", "dsh.log"), LevelInfo, FormatText); err == nil {
		t.Error("Open() should fail when the directory does not exist")
	}
}
