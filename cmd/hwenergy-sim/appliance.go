package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hwenergy/hwenergy-go/internal/fixture"
	"github.com/hwenergy/hwenergy-go/pkg/discovery"
)

// appliance is one simulated HomeWizard Energy device: an HTTP server
// with the local API surface and an optional mDNS announcement.
//
// The payloads come straight from the fixture. State and system updates
// mutate the in-memory copy, so a PUT is visible on the next GET just
// like on real hardware.
type appliance struct {
	fix *fixture.Fixture

	mu     sync.Mutex
	data   map[string]any
	state  map[string]any
	system map[string]any

	listener   net.Listener
	server     *http.Server
	advertiser *discovery.Advertiser
}

func newAppliance(f *fixture.Fixture) *appliance {
	a := &appliance{
		fix:    f,
		data:   copyMap(f.Data),
		state:  copyMap(f.State),
		system: copyMap(f.System),
	}
	if a.data == nil {
		a.data = map[string]any{}
	}
	if a.system == nil {
		a.system = map[string]any{"cloud_enabled": true}
	}
	return a
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// start binds the appliance server. A fixture port of zero picks an
// ephemeral port, which port() reports after start.
func (a *appliance) start(host string) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, a.fix.Port))
	if err != nil {
		return fmt.Errorf("failed to listen for %s: %w", a.fix.Serial, err)
	}
	a.listener = listener
	a.server = &http.Server{Handler: a.handler()}

	go func() {
		if err := a.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[SIM] %s server error: %v", a.fix.Serial, err)
		}
	}()
	return nil
}

func (a *appliance) stop(ctx context.Context) {
	if a.advertiser != nil {
		a.advertiser.Withdraw()
	}
	if a.server != nil {
		_ = a.server.Shutdown(ctx)
	}
}

func (a *appliance) port() int {
	if a.listener == nil {
		return 0
	}
	return a.listener.Addr().(*net.TCPAddr).Port
}

func (a *appliance) addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// advertise announces the appliance on the local network with the same
// TXT records real hardware publishes.
func (a *appliance) advertise(iface string) error {
	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{Interface: iface})
	if err := adv.Advertise(a.discovered()); err != nil {
		return err
	}
	a.advertiser = adv
	return nil
}

func (a *appliance) discovered() *discovery.DiscoveredDevice {
	return &discovery.DiscoveredDevice{
		Name:        a.fix.Name,
		ProductName: a.fix.ProductName,
		ProductType: a.fix.ProductType,
		Serial:      a.fix.Serial,
		Path:        "/api/" + a.fix.APIVersion,
		APIEnabled:  a.fix.Enabled(),
		Port:        a.port(),
	}
}

func (a *appliance) handler() http.Handler {
	base := "/api/" + a.fix.APIVersion

	mux := http.NewServeMux()
	mux.HandleFunc("/api", a.handleRoot)
	mux.HandleFunc(base+"/data", a.handleData)
	mux.HandleFunc(base+"/state", a.handleState)
	mux.HandleFunc(base+"/telegram", a.handleTelegram)
	mux.HandleFunc(base+"/identify", a.handleIdentify)
	mux.HandleFunc(base+"/system", a.handleSystem)
	return a.guard(mux)
}

// guard answers 403 on every route while the local API is disabled,
// matching hardware that has not been switched on in the official app.
func (a *appliance) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.fix.Enabled() {
			writeJSONStatus(w, http.StatusForbidden, map[string]any{"error": "API_DISABLED"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *appliance) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"product_name":     a.fix.ProductName,
		"product_type":     a.fix.ProductType,
		"serial":           a.fix.Serial,
		"firmware_version": a.fix.FirmwareVersion,
		"api_version":      a.fix.APIVersion,
	})
}

func (a *appliance) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	writeJSON(w, a.data)
}

func (a *appliance) handleState(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, a.state)
	case http.MethodPut:
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSONStatus(w, http.StatusBadRequest, map[string]any{"error": "INVALID_JSON"})
			return
		}
		for k, v := range patch {
			a.state[k] = v
		}
		// Real appliances answer with the fields that changed, not the
		// whole state.
		writeJSON(w, patch)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (a *appliance) handleTelegram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if a.fix.Telegram == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, a.fix.Telegram)
}

func (a *appliance) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"identify": true})
}

func (a *appliance) handleSystem(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, a.system)
	case http.MethodPut:
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSONStatus(w, http.StatusBadRequest, map[string]any{"error": "INVALID_JSON"})
			return
		}
		for k, v := range patch {
			a.system[k] = v
		}
		writeJSON(w, a.system)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, body any) {
	writeJSONStatus(w, http.StatusOK, body)
}

func writeJSONStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Readings the jitter loop is allowed to touch.
var jitterKeys = []string{
	"active_power_w",
	"active_power_l1_w",
	"active_power_l2_w",
	"active_power_l3_w",
	"active_liter_lpm",
}

// runJitter nudges the live readings every interval so dashboards and
// monitor demos have something to draw.
func (a *appliance) runJitter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.jitterOnce()
		}
	}
}

func (a *appliance) jitterOnce() {
	a.mu.Lock()
	defer a.mu.Unlock()

	scale := a.fix.JitterPct / 100
	for _, key := range jitterKeys {
		value, ok := toFloat(a.data[key])
		if !ok {
			continue
		}
		jittered := value * (1 + (rand.Float64()*2-1)*scale)
		a.data[key] = math.Round(jittered*1000) / 1000
	}

	if value, ok := toFloat(a.data["active_power_w"]); ok {
		log.Printf("[SIM] %s active_power_w=%.3f", a.fix.Serial, value)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
