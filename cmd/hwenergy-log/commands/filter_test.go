package commands

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// readBack returns every event in the log file at path.
func readBack(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
}

func TestFilterByClientID(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 30, 32, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, ClientID: "client-1", Category: log.CategoryExchange},
		{Timestamp: ts, ClientID: "client-2", Category: log.CategoryExchange},
		{Timestamp: ts, ClientID: "client-1", Category: log.CategoryExchange},
	})
	outPath := filepath.Join(t.TempDir(), "filtered.hwlog")

	err := RunFilter(path, FilterOptions{Output: outPath, ClientID: "client-1"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readBack(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, event := range got {
		if event.ClientID != "client-1" {
			t.Errorf("expected client-1, got %s", event.ClientID)
		}
	}
}

func TestFilterBySerial(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Serial: "5c2faf0011aa", Category: log.CategoryExchange},
		{Timestamp: ts, Serial: "3c39e7aabbcc", Category: log.CategoryExchange},
		{Timestamp: ts, Serial: "5c2faf0011aa", Category: log.CategoryState},
	})
	outPath := filepath.Join(t.TempDir(), "filtered.hwlog")

	err := RunFilter(path, FilterOptions{Output: outPath, Serial: "5c2faf0011aa"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readBack(t, outPath)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	for _, event := range got {
		if event.Serial != "5c2faf0011aa" {
			t.Errorf("expected 5c2faf0011aa, got %s", event.Serial)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: base, ClientID: "client-1", Category: log.CategoryExchange},
		{Timestamp: base.Add(time.Hour), ClientID: "client-1", Category: log.CategoryExchange},
		{Timestamp: base.Add(2 * time.Hour), ClientID: "client-1", Category: log.CategoryExchange},
	})
	outPath := filepath.Join(t.TempDir(), "filtered.hwlog")

	// A window around the middle event only
	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readBack(t, outPath)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if !got[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Errorf("expected middle event, got timestamp %v", got[0].Timestamp)
	}
}

func TestFilterCommandBySource(t *testing.T) {
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, Source: log.SourceREST, Category: log.CategoryExchange},
		{Timestamp: ts, Source: log.SourceDiscovery, Category: log.CategoryAnnounce},
		{Timestamp: ts, Source: log.SourceMonitor, Category: log.CategoryState},
	})
	outPath := filepath.Join(t.TempDir(), "filtered.hwlog")

	err := RunFilter(path, FilterOptions{Output: outPath, Source: "discovery"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	got := readBack(t, outPath)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Source != log.SourceDiscovery {
		t.Errorf("expected discovery source, got %v", got[0].Source)
	}
}

func TestFilterWritesCBOR(t *testing.T) {
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, ClientID: "client-1", Category: log.CategoryExchange},
	})
	outPath := filepath.Join(t.TempDir(), "filtered.hwlog")

	err := RunFilter(path, FilterOptions{Output: outPath})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	// The output must itself be a valid log file
	got := readBack(t, outPath)
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].ClientID != "client-1" {
		t.Errorf("expected client-1, got %s", got[0].ClientID)
	}
}

func TestFilterInvalidTimeStart(t *testing.T) {
	path := createTestLogFile(t, []log.Event{
		{Timestamp: time.Now(), Category: log.CategoryExchange},
	})

	err := RunFilter(path, FilterOptions{
		Output:    filepath.Join(t.TempDir(), "out.hwlog"),
		TimeStart: "yesterday",
	})
	if err == nil {
		t.Fatal("expected error for invalid time format")
	}
	if !strings.Contains(err.Error(), "time-start") {
		t.Errorf("expected time-start error, got: %v", err)
	}
}
