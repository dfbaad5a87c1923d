package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		config    LogLevel
		message   LogLevel
		shouldLog bool
	}{
		{"debug at debug", DebugLevel, DebugLevel, true},
		{"debug at info", InfoLevel, DebugLevel, false},
		{"info at info", InfoLevel, InfoLevel, true},
		{"warn at error", ErrorLevel, WarnLevel, false},
		{"error at warn", WarnLevel, ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(Config{Format: JSONFormat, Level: tt.config, Output: &buf})

			logger.log(tt.message, "test message", nil)

			got := buf.Len() > 0
			if got != tt.shouldLog {
				t.Errorf("logged = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("indexing complete", map[string]interface{}{
		"files": 12,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["message"] != "indexing complete" {
		t.Errorf("message = %v, want 'indexing complete'", entry["message"])
	}
	fields, ok := entry["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("fields missing from entry: %v", entry)
	}
	if fields["files"] != float64(12) {
		t.Errorf("fields.files = %v, want 12", fields["files"])
	}
}

func TestHumanOutputSortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})

	logger.Info("batch done", map[string]interface{}{
		"updated": 3,
		"failed":  1,
		"skipped": 2,
	})

	out := buf.String()
	failedIdx := strings.Index(out, "failed=1")
	skippedIdx := strings.Index(out, "skipped=2")
	updatedIdx := strings.Index(out, "updated=3")
	if failedIdx < 0 || skippedIdx < 0 || updatedIdx < 0 {
		t.Fatalf("missing fields in output: %q", out)
	}
	if !(failedIdx < skippedIdx && skippedIdx < updatedIdx) {
		t.Errorf("fields not sorted: %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.WithComponent("watcher").Info("started", nil)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["component"] != "watcher" {
		t.Errorf("component = %v, want watcher", entry["component"])
	}
}
