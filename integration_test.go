package hwenergy_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/device"
	"github.com/hwenergy/hwenergy-go/pkg/discovery"
	"github.com/hwenergy/hwenergy-go/pkg/log"
	"github.com/hwenergy/hwenergy-go/pkg/monitor"
	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

// TestE2E_Discovery tests that a collector picks up an appliance announced
// via mDNS.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Setup: appliance announces itself
	advertiser := discovery.NewAdvertiser(discovery.AdvertiserConfig{})
	defer advertiser.Withdraw()

	announced := &discovery.DiscoveredDevice{
		Name:        "energysocket-E2E001",
		ProductName: "Energy Socket",
		ProductType: "HWE-SKT",
		Serial:      "5c2fafe2e001",
		Path:        "/api/v1",
		APIEnabled:  true,
		Port:        8800,
	}
	if err := advertiser.Advertise(announced); err != nil {
		t.Fatalf("Failed to advertise: %v", err)
	}

	// Give mDNS time to propagate
	time.Sleep(500 * time.Millisecond)

	// Collector browses for appliances
	changed := make(chan struct{}, 1)
	collector := discovery.NewCollector(discovery.CollectorConfig{
		Debounce: 100 * time.Millisecond,
	})
	collector.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	if err := collector.Start(ctx); err != nil {
		t.Fatalf("Failed to start collector: %v", err)
	}
	defer collector.Stop()

	// Wait until the announcement shows up in the store
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-changed:
			found, ok := collector.Device("5c2fafe2e001")
			if !ok {
				continue
			}
			if found.ProductType != "HWE-SKT" {
				t.Errorf("ProductType mismatch: expected HWE-SKT, got %s", found.ProductType)
			}
			if found.Port != 8800 {
				t.Errorf("Port mismatch: expected 8800, got %d", found.Port)
			}
			if !found.APIEnabled {
				t.Error("Expected APIEnabled to be true")
			}
			t.Logf("Discovered %s (%s) at port %d", found.Serial, found.ProductType, found.Port)
			return
		case <-deadline:
			t.Fatal("Timeout waiting for announcement")
		}
	}
}

// TestE2E_LoadAndRead tests loading an appliance by address and reading
// identity, telemetry and the raw telegram.
func TestE2E_LoadAndRead(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	power := 1337.5
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"product_name":     "P1 meter",
			"product_type":     "HWE-P1",
			"serial":           "3c39e7e2e002",
			"firmware_version": "5.18",
			"api_version":      "v1",
		})
	})
	mux.HandleFunc("/api/v1/data", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"active_power_w":            power,
			"total_power_import_t1_kwh": 10830.511,
		})
	})
	mux.HandleFunc("/api/v1/telegram", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "/ISK5\\2M550T-1012\r\n1-3:0.2.8(50)\r\n!1A2B\r\n")
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := rest.NewClient(rest.Config{})

	dev, err := device.LoadAddress(ctx, client, hostOf(server))
	if err != nil {
		t.Fatalf("Failed to load appliance: %v", err)
	}

	// Verify identity
	info := dev.Info()
	if info.Serial != "3c39e7e2e002" {
		t.Errorf("Serial mismatch: expected 3c39e7e2e002, got %s", info.Serial)
	}
	if info.ProductType != device.TypeP1Meter {
		t.Errorf("ProductType mismatch: expected %s, got %s", device.TypeP1Meter, info.ProductType)
	}

	p1, ok := dev.(*device.P1Meter)
	if !ok {
		t.Fatalf("Expected *device.P1Meter, got %T", dev)
	}

	// Read telemetry
	data, err := p1.Data(ctx)
	if err != nil {
		t.Fatalf("Failed to read telemetry: %v", err)
	}
	if data.ActivePowerW == nil || *data.ActivePowerW != power {
		t.Errorf("ActivePowerW mismatch: expected %v, got %v", power, data.ActivePowerW)
	}

	// Read raw telegram
	telegram, err := p1.Telegram(ctx)
	if err != nil {
		t.Fatalf("Failed to read telegram: %v", err)
	}
	if !strings.HasPrefix(telegram, "/ISK5") {
		t.Errorf("Unexpected telegram: %q", telegram)
	}

	t.Logf("Loaded %s, read %.1f W and a %d byte telegram", info.Serial, *data.ActivePowerW, len(telegram))
}

// TestE2E_StateControl tests the state round trip against an energy socket:
// read, partial update, read back, identify.
func TestE2E_StateControl(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Mutable socket state behind the fake
	var stateMu sync.Mutex
	powerOn := false
	brightness := 255

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"product_name":     "Energy Socket",
			"product_type":     "HWE-SKT",
			"serial":           "5c2fafe2e003",
			"firmware_version": "4.07",
			"api_version":      "v1",
		})
	})
	mux.HandleFunc("/api/v1/state", func(w http.ResponseWriter, r *http.Request) {
		stateMu.Lock()
		defer stateMu.Unlock()

		if r.Method == http.MethodPut {
			var patch map[string]any
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			applied := map[string]any{}
			if v, ok := patch["power_on"].(bool); ok {
				powerOn = v
				applied["power_on"] = v
			}
			if v, ok := patch["brightness"].(float64); ok {
				brightness = int(v)
				applied["brightness"] = brightness
			}
			writeJSON(w, applied)
			return
		}

		writeJSON(w, map[string]any{
			"power_on":    powerOn,
			"switch_lock": false,
			"brightness":  brightness,
		})
	})
	mux.HandleFunc("/api/v1/identify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{"identify": true})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := rest.NewClient(rest.Config{})

	dev, err := device.LoadAddress(ctx, client, hostOf(server))
	if err != nil {
		t.Fatalf("Failed to load appliance: %v", err)
	}

	socket, ok := dev.(*device.EnergySocket)
	if !ok {
		t.Fatalf("Expected *device.EnergySocket, got %T", dev)
	}

	// Initial state
	state, err := socket.State(ctx)
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if state.PowerOn == nil || *state.PowerOn {
		t.Errorf("Expected power off initially, got %v", state.PowerOn)
	}

	// Switch on; only the patched field comes back
	applied, err := socket.SetPowerOn(ctx, true)
	if err != nil {
		t.Fatalf("Failed to switch on: %v", err)
	}
	if applied.PowerOn == nil || !*applied.PowerOn {
		t.Errorf("Expected applied power on, got %v", applied.PowerOn)
	}
	if applied.Brightness != nil {
		t.Errorf("Expected no brightness in patch response, got %v", *applied.Brightness)
	}

	// Read back the full state
	state, err = socket.State(ctx)
	if err != nil {
		t.Fatalf("Failed to read state after switch: %v", err)
	}
	if state.PowerOn == nil || !*state.PowerOn {
		t.Errorf("Expected power on after switch, got %v", state.PowerOn)
	}

	// Dim the status light
	applied, err = socket.SetBrightness(ctx, 127)
	if err != nil {
		t.Fatalf("Failed to set brightness: %v", err)
	}
	if applied.Brightness == nil || *applied.Brightness != 127 {
		t.Errorf("Expected brightness 127, got %v", applied.Brightness)
	}

	// Identify blinks the status light
	if err := socket.Identify(ctx); err != nil {
		t.Fatalf("Failed to identify: %v", err)
	}

	t.Log("State round trip successful - switch, brightness and identify applied")
}

// TestE2E_MonitorPolling tests that the monitor polls multiple appliances
// and delivers telemetry events.
func TestE2E_MonitorPolling(t *testing.T) {
	// Two fake appliances with distinct power readings
	p1Server := newTelemetryServer(t, "HWE-P1", "3c39e7e2e004", 100.0)
	defer p1Server.Close()
	socketServer := newTelemetryServer(t, "HWE-SKT", "5c2fafe2e005", 200.0)
	defer socketServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := rest.NewClient(rest.Config{})

	p1Dev, err := device.LoadAddress(ctx, client, hostOf(p1Server))
	if err != nil {
		t.Fatalf("Failed to load p1: %v", err)
	}
	socketDev, err := device.LoadAddress(ctx, client, hostOf(socketServer))
	if err != nil {
		t.Fatalf("Failed to load socket: %v", err)
	}

	mon := monitor.New(monitor.Config{
		Interval: time.Second,
		Client:   client,
	})
	mon.Add(p1Dev, socketDev)

	events := make(chan monitor.Event, 10)
	mon.OnEvent(func(e monitor.Event) {
		select {
		case events <- e:
		default:
		}
	})

	mon.Start()
	defer mon.Stop()

	// Collect outcomes until both appliances reported
	seen := map[string]float64{}
	deadline := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case e := <-events:
			if e.Err != nil {
				t.Fatalf("Poll failed for %s: %v", e.Serial, e.Err)
			}
			switch data := e.Telemetry.(type) {
			case *device.P1Data:
				if data.ActivePowerW != nil {
					seen[e.Serial] = *data.ActivePowerW
				}
			case *device.SocketData:
				if data.ActivePowerW != nil {
					seen[e.Serial] = *data.ActivePowerW
				}
			default:
				t.Fatalf("Unexpected telemetry type %T for %s", e.Telemetry, e.Serial)
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for poll outcomes, saw %d of 2", len(seen))
		}
	}

	if seen["3c39e7e2e004"] != 100.0 {
		t.Errorf("P1 power mismatch: expected 100.0, got %v", seen["3c39e7e2e004"])
	}
	if seen["5c2fafe2e005"] != 200.0 {
		t.Errorf("Socket power mismatch: expected 200.0, got %v", seen["5c2fafe2e005"])
	}

	t.Logf("Monitor polled both appliances: %v", seen)
}

// TestE2E_CloudToggle tests the system configuration round trip.
func TestE2E_CloudToggle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var configMu sync.Mutex
	cloudEnabled := true

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"product_name":     "Watermeter",
			"product_type":     "HWE-WTR",
			"serial":           "5c2fafe2e006",
			"firmware_version": "2.03",
			"api_version":      "v1",
		})
	})
	mux.HandleFunc("/api/v1/system", func(w http.ResponseWriter, r *http.Request) {
		configMu.Lock()
		defer configMu.Unlock()

		if r.Method == http.MethodPut {
			var patch map[string]any
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if v, ok := patch["cloud_enabled"].(bool); ok {
				cloudEnabled = v
			}
		}
		writeJSON(w, map[string]any{"cloud_enabled": cloudEnabled})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := rest.NewClient(rest.Config{})

	dev, err := device.LoadAddress(ctx, client, hostOf(server))
	if err != nil {
		t.Fatalf("Failed to load appliance: %v", err)
	}

	meter, ok := dev.(*device.Watermeter)
	if !ok {
		t.Fatalf("Expected *device.Watermeter, got %T", dev)
	}

	// Cloud starts enabled
	config, err := meter.SystemConfig(ctx)
	if err != nil {
		t.Fatalf("Failed to read system config: %v", err)
	}
	if config.CloudEnabled == nil || !*config.CloudEnabled {
		t.Errorf("Expected cloud enabled initially, got %v", config.CloudEnabled)
	}

	// Switch it off
	applied, err := meter.SetCloudEnabled(ctx, false)
	if err != nil {
		t.Fatalf("Failed to disable cloud: %v", err)
	}
	if applied.CloudEnabled == nil || *applied.CloudEnabled {
		t.Errorf("Expected cloud disabled after toggle, got %v", applied.CloudEnabled)
	}

	// Read back
	config, err = meter.SystemConfig(ctx)
	if err != nil {
		t.Fatalf("Failed to re-read system config: %v", err)
	}
	if config.CloudEnabled == nil || *config.CloudEnabled {
		t.Errorf("Expected cloud disabled on read back, got %v", config.CloudEnabled)
	}

	t.Log("Cloud toggle successful - disabled and verified")
}

// TestE2E_DiagnosticLog tests that a client with a file logger writes a
// readable exchange trail.
func TestE2E_DiagnosticLog(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	server := newTelemetryServer(t, "HWE-P1", "3c39e7e2e007", 42.0)
	defer server.Close()

	path := filepath.Join(t.TempDir(), "e2e.hwlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	client := rest.NewClient(rest.Config{Logger: logger})

	dev, err := device.LoadAddress(ctx, client, hostOf(server))
	if err != nil {
		t.Fatalf("Failed to load appliance: %v", err)
	}
	p1 := dev.(*device.P1Meter)
	if _, err := p1.Data(ctx); err != nil {
		t.Fatalf("Failed to read telemetry: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	// Replay the trail: two exchanges, each a request and a response
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	defer reader.Close()

	requests := 0
	responses := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}

		if event.ClientID != client.ID() {
			t.Errorf("ClientID mismatch: expected %s, got %s", client.ID(), event.ClientID)
		}
		if event.Exchange == nil {
			t.Fatalf("Expected exchange event, got category %v", event.Category)
		}
		if event.Exchange.Status == 0 {
			requests++
		} else {
			responses++
			if event.Exchange.Status != http.StatusOK {
				t.Errorf("Expected status 200, got %d", event.Exchange.Status)
			}
			if event.Exchange.Duration == nil {
				t.Error("Expected duration on response event")
			}
		}
	}

	if requests != 2 {
		t.Errorf("Expected 2 request events, got %d", requests)
	}
	if responses != 2 {
		t.Errorf("Expected 2 response events, got %d", responses)
	}

	t.Logf("Diagnostic log captured %d requests and %d responses", requests, responses)
}

// Helper functions

// newTelemetryServer fakes an appliance that reports a fixed active power.
func newTelemetryServer(t *testing.T, productType, serial string, power float64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"product_name":     "Test Appliance",
			"product_type":     productType,
			"serial":           serial,
			"firmware_version": "1.00",
			"api_version":      "v1",
		})
	})
	mux.HandleFunc("/api/v1/data", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"active_power_w": power})
	})

	return httptest.NewServer(mux)
}

// hostOf strips the scheme from a test server URL, leaving host:port.
func hostOf(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "http://")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
