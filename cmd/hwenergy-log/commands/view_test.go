package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

func TestFormatExchangeRequest(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 30, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp: ts,
		ClientID:  "abc12345-6789-0123-4567-890abcdef012",
		Direction: log.DirectionOut,
		Source:    log.SourceREST,
		Category:  log.CategoryExchange,
		Serial:    "5c2faf0011aa",
		Exchange: &log.ExchangeEvent{
			Seq:    42,
			Method: "GET",
			URL:    "http://192.168.1.10/api/v1/data",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check timestamp format
	if !strings.Contains(output, "2026-08-20T09:30:32.123456Z") {
		t.Errorf("expected formatted timestamp, got: %s", output)
	}

	// Check client ID (shortened)
	if !strings.Contains(output, "[client:abc12345]") {
		t.Errorf("expected shortened client ID, got: %s", output)
	}

	// Check direction
	if !strings.Contains(output, "OUT") {
		t.Errorf("expected OUT direction, got: %s", output)
	}

	// Check source
	if !strings.Contains(output, "REST") {
		t.Errorf("expected REST source, got: %s", output)
	}

	// Check request details
	if !strings.Contains(output, "Request") {
		t.Errorf("expected Request label, got: %s", output)
	}
	if !strings.Contains(output, "Seq: 42") {
		t.Errorf("expected Seq: 42, got: %s", output)
	}
	if !strings.Contains(output, "GET http://192.168.1.10/api/v1/data") {
		t.Errorf("expected method and URL, got: %s", output)
	}
	if !strings.Contains(output, "Serial: 5c2faf0011aa") {
		t.Errorf("expected serial line, got: %s", output)
	}
}

func TestFormatExchangeResponse(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 30, 32, 125789000, time.UTC)
	duration := 2333 * time.Microsecond
	event := log.Event{
		Timestamp: ts,
		ClientID:  "abc12345-6789-0123-4567-890abcdef012",
		Direction: log.DirectionIn,
		Source:    log.SourceREST,
		Category:  log.CategoryExchange,
		Exchange: &log.ExchangeEvent{
			Seq:      42,
			Method:   "GET",
			URL:      "http://192.168.1.10/api/v1/data",
			Status:   200,
			BodySize: 512,
			Duration: &duration,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check response label
	if !strings.Contains(output, "Response") {
		t.Errorf("expected Response label, got: %s", output)
	}

	// Check status
	if !strings.Contains(output, "Status: 200") {
		t.Errorf("expected Status: 200, got: %s", output)
	}

	// Check body size
	if !strings.Contains(output, "Size: 512 bytes") {
		t.Errorf("expected body size, got: %s", output)
	}

	// Check duration
	if !strings.Contains(output, "Duration:") {
		t.Errorf("expected Duration, got: %s", output)
	}
}

func TestFormatAnnounceEvent(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 30, 30, 0, time.UTC)
	event := log.Event{
		Timestamp: ts,
		Direction: log.DirectionIn,
		Source:    log.SourceDiscovery,
		Category:  log.CategoryAnnounce,
		Serial:    "3c39e7aabbcc",
		Announce: &log.AnnounceEvent{
			Instance:    "p1meter-AABBCC",
			ProductType: "HWE-P1",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check announce label
	if !strings.Contains(output, "Announce") {
		t.Errorf("expected Announce label, got: %s", output)
	}

	// Check instance and type
	if !strings.Contains(output, "Instance: p1meter-AABBCC") {
		t.Errorf("expected instance, got: %s", output)
	}
	if !strings.Contains(output, "Type: HWE-P1") {
		t.Errorf("expected product type, got: %s", output)
	}
}

func TestFormatAnnounceWithdrawn(t *testing.T) {
	event := log.Event{
		Timestamp: time.Date(2026, 8, 20, 9, 31, 0, 0, time.UTC),
		Direction: log.DirectionIn,
		Source:    log.SourceDiscovery,
		Category:  log.CategoryAnnounce,
		Announce: &log.AnnounceEvent{
			Instance:  "p1meter-AABBCC",
			Withdrawn: true,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Withdraw") {
		t.Errorf("expected Withdraw label, got: %s", output)
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 30, 30, 0, time.UTC)
	event := log.Event{
		Timestamp: ts,
		Direction: log.DirectionLocal,
		Source:    log.SourceMonitor,
		Category:  log.CategoryState,
		Serial:    "5c2faf0011aa",
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityMonitor,
			OldState: "",
			NewState: "running",
			Reason:   "start requested",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	// Check state label
	if !strings.Contains(output, "State") {
		t.Errorf("expected State label, got: %s", output)
	}

	// Check entity
	if !strings.Contains(output, "MONITOR") {
		t.Errorf("expected MONITOR entity, got: %s", output)
	}

	// Check new state without old state arrow prefix
	if !strings.Contains(output, "-> running") {
		t.Errorf("expected new state, got: %s", output)
	}
	if !strings.Contains(output, "Reason: start requested") {
		t.Errorf("expected reason, got: %s", output)
	}
}

func TestFormatErrorEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Date(2026, 8, 20, 9, 32, 0, 0, time.UTC),
		Direction: log.DirectionLocal,
		Source:    log.SourceMonitor,
		Category:  log.CategoryError,
		Serial:    "5c2fafddeeff",
		Error: &log.ErrorEventData{
			Source:  log.SourceMonitor,
			Message: "poll failed",
			Kind:    "timeout",
			Context: "GET /api/v1/data",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Error") {
		t.Errorf("expected Error label, got: %s", output)
	}
	if !strings.Contains(output, "Message: poll failed") {
		t.Errorf("expected message, got: %s", output)
	}
	if !strings.Contains(output, "Kind: timeout") {
		t.Errorf("expected kind, got: %s", output)
	}
}

func TestFilterBySource(t *testing.T) {
	events := []log.Event{
		{Source: log.SourceREST, Category: log.CategoryExchange},
		{Source: log.SourceDiscovery, Category: log.CategoryAnnounce},
		{Source: log.SourceMonitor, Category: log.CategoryState},
	}

	discovery := log.SourceDiscovery
	filter := ViewFilter{Source: &discovery}

	filtered := filterEvents(events, filter)
	if len(filtered) != 1 {
		t.Errorf("expected 1 event, got %d", len(filtered))
	}
	if filtered[0].Source != log.SourceDiscovery {
		t.Errorf("expected discovery source, got %v", filtered[0].Source)
	}
}

func TestFilterByDirection(t *testing.T) {
	events := []log.Event{
		{Direction: log.DirectionIn, Category: log.CategoryExchange},
		{Direction: log.DirectionOut, Category: log.CategoryExchange},
		{Direction: log.DirectionIn, Category: log.CategoryExchange},
	}

	out := log.DirectionOut
	filter := ViewFilter{Direction: &out}

	filtered := filterEvents(events, filter)
	if len(filtered) != 1 {
		t.Errorf("expected 1 event, got %d", len(filtered))
	}
	if filtered[0].Direction != log.DirectionOut {
		t.Errorf("expected out direction, got %v", filtered[0].Direction)
	}
}

func TestFilterByCategory(t *testing.T) {
	events := []log.Event{
		{Category: log.CategoryExchange},
		{Category: log.CategoryAnnounce},
		{Category: log.CategoryState},
		{Category: log.CategoryError},
	}

	state := log.CategoryState
	filter := ViewFilter{Category: &state}

	filtered := filterEvents(events, filter)
	if len(filtered) != 1 {
		t.Errorf("expected 1 event, got %d", len(filtered))
	}
	if filtered[0].Category != log.CategoryState {
		t.Errorf("expected state category, got %v", filtered[0].Category)
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Source
		wantErr  bool
	}{
		{"rest", log.SourceREST, false},
		{"REST", log.SourceREST, false},
		{"discovery", log.SourceDiscovery, false},
		{"monitor", log.SourceMonitor, false},
		{"device", log.SourceDevice, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSource(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSource(%q) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseSource(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSource(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Direction
		wantErr  bool
	}{
		{"in", log.DirectionIn, false},
		{"IN", log.DirectionIn, false},
		{"out", log.DirectionOut, false},
		{"OUT", log.DirectionOut, false},
		{"local", log.DirectionLocal, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseDirection(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseDirection(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Category
		wantErr  bool
	}{
		{"exchange", log.CategoryExchange, false},
		{"EXCHANGE", log.CategoryExchange, false},
		{"announce", log.CategoryAnnounce, false},
		{"state", log.CategoryState, false},
		{"error", log.CategoryError, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseCategory(%q) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("ParseCategory(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		}
	}
}

func TestRunViewFiltersFromFile(t *testing.T) {
	ts := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	events := []log.Event{
		{
			Timestamp: ts,
			Direction: log.DirectionOut,
			Source:    log.SourceREST,
			Category:  log.CategoryExchange,
			Exchange:  &log.ExchangeEvent{Seq: 1, Method: "GET", URL: "http://host/api"},
		},
		{
			Timestamp: ts.Add(time.Second),
			Direction: log.DirectionIn,
			Source:    log.SourceDiscovery,
			Category:  log.CategoryAnnounce,
			Announce:  &log.AnnounceEvent{Instance: "p1meter-AABBCC"},
		},
	}

	path := createTestLogFile(t, events)

	rest := log.SourceREST
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Source: &rest}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "GET http://host/api") {
		t.Errorf("expected REST exchange in output, got: %s", output)
	}
	if strings.Contains(output, "p1meter-AABBCC") {
		t.Errorf("expected discovery event to be filtered out, got: %s", output)
	}
}
