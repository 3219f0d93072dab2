// Package logutil writes structured log lines as single JSON objects.
package logutil

import (
	"encoding/json"
	"log"
	"time"
)

// Fields carries structured context for a log line.
type Fields map[string]interface{}

// Info logs a structured info message.
func Info(msg string, fields Fields) {
	logJSON("info", msg, fields)
}

// Warn logs a structured warning.
func Warn(msg string, fields Fields) {
	logJSON("warn", msg, fields)
}

// Error logs a structured error message including the error string.
func Error(msg string, err error, fields Fields) {
	entry := Fields{}
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	logJSON("error", msg, entry)
}

// Entry builds the JSON object written for a log line.
func Entry(level, msg string, fields Fields) map[string]interface{} {
	entry := map[string]interface{}{}
	for k, v := range fields {
		entry[k] = v
	}
	entry["level"] = level
	entry["message"] = msg
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	return entry
}

func logJSON(level, msg string, fields Fields) {
	payload, err := json.Marshal(Entry(level, msg, fields))
	if err != nil {
		log.Printf("%s: %+v", msg, fields)
		return
	}
	log.Printf("%s", payload)
}
