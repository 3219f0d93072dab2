package logutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestEntryReservedKeysWin(t *testing.T) {
	t.Parallel()

	entry := Entry("info", "webhook_received", Fields{"level": "spoofed", "requestId": "abc"})
	if entry["level"] != "info" || entry["message"] != "webhook_received" {
		t.Fatalf("reserved keys overwritten: %+v", entry)
	}
	if entry["requestId"] != "abc" {
		t.Fatalf("expected field to be copied: %+v", entry)
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Fatalf("expected timestamp string: %+v", entry)
	}
}

func TestErrorWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})

	fields := Fields{"requestId": "r-1"}
	Error("webhook_parse_failed", errors.New("boom"), fields)

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q (%v)", buf.String(), err)
	}
	if entry["error"] != "boom" || entry["level"] != "error" || entry["requestId"] != "r-1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if _, mutated := fields["error"]; mutated {
		t.Fatalf("caller fields should not be mutated")
	}
}
