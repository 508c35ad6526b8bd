package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// statsOutput runs the stats command over events and returns its report.
func statsOutput(t *testing.T, events []log.Event) string {
	t.Helper()
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	return buf.String()
}

func TestStatsCountsBySource(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: ts, Source: log.SourceREST, Category: log.CategoryExchange},
		{Timestamp: ts, Source: log.SourceREST, Category: log.CategoryExchange},
		{Timestamp: ts, Source: log.SourceDiscovery, Category: log.CategoryAnnounce},
		{Timestamp: ts, Source: log.SourceMonitor, Category: log.CategoryState},
	})

	for _, want := range []string{"REST:", "DISCOVERY:", "MONITOR:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got:\n%s", want, output)
		}
	}
}

func TestStatsCountsByCategory(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: ts, Category: log.CategoryExchange},
		{Timestamp: ts, Category: log.CategoryAnnounce},
		{Timestamp: ts, Category: log.CategoryState},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "test"}},
	})

	for _, want := range []string{"EXCHANGE:", "ANNOUNCE:", "STATE:", "ERROR:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got:\n%s", want, output)
		}
	}
}

func TestStatsCountsClients(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: ts, ClientID: "aaaabbbb-0001", Category: log.CategoryExchange, Exchange: &log.ExchangeEvent{Seq: 1}},
		{Timestamp: ts.Add(time.Second), ClientID: "aaaabbbb-0001", Category: log.CategoryExchange, Exchange: &log.ExchangeEvent{Seq: 1, Status: 200}},
		{Timestamp: ts, ClientID: "ccccdddd-0002", Category: log.CategoryExchange, Exchange: &log.ExchangeEvent{Seq: 1}},
	})

	if !strings.Contains(output, "Clients: 2") {
		t.Errorf("expected 2 clients in output, got:\n%s", output)
	}
	if !strings.Contains(output, "[aaaabbbb") {
		t.Error("expected aaaabbbb client details")
	}
	if !strings.Contains(output, "Exchanges: 2") {
		t.Errorf("expected exchange count for first client, got:\n%s", output)
	}
}

func TestStatsCountsAppliances(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: ts, Serial: "5c2faf0011aa", Category: log.CategoryExchange},
		{Timestamp: ts, Serial: "5c2faf0011aa", Category: log.CategoryExchange},
		{Timestamp: ts, Serial: "3c39e7aabbcc", Category: log.CategoryAnnounce},
		{Timestamp: ts, Category: log.CategoryState},
	})

	if !strings.Contains(output, "Appliances: 2") {
		t.Errorf("expected 2 appliances in output, got:\n%s", output)
	}
	if !strings.Contains(output, "5c2faf0011aa: 2 events") {
		t.Errorf("expected per-appliance count, got:\n%s", output)
	}
	if !strings.Contains(output, "3c39e7aabbcc: 1 events") {
		t.Errorf("expected per-appliance count, got:\n%s", output)
	}
}

func TestStatsTotalEvents(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: ts, Category: log.CategoryExchange},
		{Timestamp: ts, Category: log.CategoryExchange},
		{Timestamp: ts, Category: log.CategoryExchange},
	})

	if !strings.Contains(output, "Total Events: 3") {
		t.Errorf("expected 3 total events in output, got:\n%s", output)
	}
}

func TestStatsTimeRange(t *testing.T) {
	start := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: start, Category: log.CategoryExchange},
		{Timestamp: start.Add(time.Hour), Category: log.CategoryExchange},
	})

	if !strings.Contains(output, "Duration:") {
		t.Error("expected Duration in output")
	}
	if !strings.Contains(output, "1h0m0s") {
		t.Errorf("expected 1h0m0s duration in output, got:\n%s", output)
	}
}

func TestStatsErrorCount(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	output := statsOutput(t, []log.Event{
		{Timestamp: ts, Category: log.CategoryExchange},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "error 1"}},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "error 2"}},
	})

	if !strings.Contains(output, "Errors: 2") {
		t.Errorf("expected 2 errors in output, got:\n%s", output)
	}
}
