// Package store holds received webhook events, newest first.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oremus-labs/webhook-receiver/internal/analyzer"
)

// Supported datastore drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Event is a received webhook payload together with its derived analysis.
type Event struct {
	StructuredData interface{}       `json:"structuredData"`
	Analysis       analyzer.Analysis `json:"analysis"`
	Timestamp      int64             `json:"timestamp"`
}

// Store is an append-only, newest-first event log.
type Store interface {
	// Append inserts evt at the front of the log.
	Append(ctx context.Context, evt Event) error
	// ListAll returns every event, newest first. An empty store yields an
	// empty, non-nil slice.
	ListAll(ctx context.Context) ([]Event, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Open returns a Store for the named driver. Both drivers keep events in
// process memory only.
func Open(driver string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		s, err := OpenSQLite()
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported datastore driver: %s", driver)
	}
}

// DecodeEvent parses a JSON-encoded Event, keeping numbers as json.Number so
// structured data survives a round trip unchanged.
func DecodeEvent(data []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var evt Event
	if err := dec.Decode(&evt); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return evt, nil
}
