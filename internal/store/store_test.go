package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/oremus-labs/webhook-receiver/internal/analyzer"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{}
	for _, driver := range []string{DriverMemory, DriverSQLite} {
		s, err := Open(driver)
		if err != nil {
			t.Fatalf("Open(%s): %v", driver, err)
		}
		t.Cleanup(func() {
			_ = s.Close()
		})
		stores[driver] = s
	}
	return stores
}

func testEvent(id string, ts int64) Event {
	return Event{
		StructuredData: map[string]interface{}{"id": id},
		Analysis:       analyzer.BuildAnalysis(map[string]interface{}{"name": id}, nil),
		Timestamp:      ts,
	}
}

func eventID(t *testing.T, evt Event) string {
	t.Helper()
	doc, ok := analyzer.AsDocument(evt.StructuredData)
	if !ok {
		t.Fatalf("expected object structured data, got %#v", evt.StructuredData)
	}
	id, _ := doc["id"].(string)
	return id
}

func TestStoreEmpty(t *testing.T) {
	t.Parallel()

	for driver, s := range openStores(t) {
		events, err := s.ListAll(context.Background())
		if err != nil {
			t.Fatalf("%s ListAll: %v", driver, err)
		}
		if events == nil || len(events) != 0 {
			t.Fatalf("%s: expected empty non-nil slice, got %#v", driver, events)
		}
		data, err := json.Marshal(events)
		if err != nil {
			t.Fatalf("%s marshal: %v", driver, err)
		}
		if string(data) != "[]" {
			t.Fatalf("%s: expected [] got %s", driver, data)
		}
	}
}

func TestStoreNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for driver, s := range openStores(t) {
		for i, id := range []string{"a", "b", "c"} {
			if err := s.Append(ctx, testEvent(id, int64(1000+i))); err != nil {
				t.Fatalf("%s Append: %v", driver, err)
			}
		}
		events, err := s.ListAll(ctx)
		if err != nil {
			t.Fatalf("%s ListAll: %v", driver, err)
		}
		got := []string{}
		for _, evt := range events {
			got = append(got, eventID(t, evt))
		}
		if fmt.Sprint(got) != "[c b a]" {
			t.Fatalf("%s: expected newest first, got %v", driver, got)
		}
		if events[0].Timestamp != 1002 {
			t.Fatalf("%s: unexpected timestamp %d", driver, events[0].Timestamp)
		}
		if !events[0].Analysis.SuccessEvaluation || len(events[0].Analysis.KeyPoints) != 3 {
			t.Fatalf("%s: analysis not preserved: %+v", driver, events[0].Analysis)
		}
		n, err := s.Len(ctx)
		if err != nil || n != 3 {
			t.Fatalf("%s: expected len 3 got %d err=%v", driver, n, err)
		}
	}
}

func TestListAllReturnsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemory()
	_ = s.Append(ctx, testEvent("a", 1))
	snapshot, _ := s.ListAll(ctx)
	_ = s.Append(ctx, testEvent("b", 2))
	if len(snapshot) != 1 {
		t.Fatalf("snapshot should not observe later appends, got %d entries", len(snapshot))
	}
	snapshot[0] = testEvent("mutated", 3)
	events, _ := s.ListAll(ctx)
	if eventID(t, events[1]) != "a" {
		t.Fatalf("mutating a snapshot changed the store")
	}
}

func TestMemoryConcurrentAppend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(ctx, testEvent(fmt.Sprintf("e%d", i), int64(i)))
		}(i)
	}
	wg.Wait()
	n, _ := s.Len(ctx)
	if n != 50 {
		t.Fatalf("expected 50 events got %d", n)
	}
}

func TestSQLitePreservesNumbers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := OpenSQLite()
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	payload, err := analyzer.Decode([]byte(`{"team_size":12345678901234567890}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := s.Append(ctx, Event{StructuredData: payload, Timestamp: 1}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	events, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	doc, _ := analyzer.AsDocument(events[0].StructuredData)
	if n, ok := doc["team_size"].(json.Number); !ok || n.String() != "12345678901234567890" {
		t.Fatalf("expected number preserved, got %#v", doc["team_size"])
	}
}

func TestSQLiteStoresAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first, err := OpenSQLite()
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer first.Close()
	second, err := OpenSQLite()
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer second.Close()

	if err := first.Append(ctx, testEvent("a", 1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if n, _ := second.Len(ctx); n != 0 {
		t.Fatalf("expected second store to be empty, got %d", n)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open("postgres"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
