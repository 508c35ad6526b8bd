package monitor

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/device"
	"github.com/hwenergy/hwenergy-go/pkg/log"
	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

const (
	// DefaultInterval is the poll interval when Config leaves it zero.
	DefaultInterval = 5 * time.Second
	// MinInterval is the lower bound on the poll interval; smaller
	// configured values are clamped up to it.
	MinInterval = time.Second
)

// Event is one poll outcome for one device.
type Event struct {
	// Serial identifies the polled device.
	Serial string
	// Time is when the poll completed.
	Time time.Time
	// Telemetry is the decoded snapshot. Nil when the poll failed.
	Telemetry device.Telemetry
	// Err is the poll failure. Nil when the poll succeeded.
	Err error
}

// Config carries the construction options for a Monitor.
type Config struct {
	// Interval between poll cycles. Zero means DefaultInterval; values
	// below MinInterval are clamped.
	Interval time.Duration
	// Client is the pipeline client polls go through. Nil means the
	// shared default client.
	Client *rest.Client
	// Logger receives structured events. Nil discards them.
	Logger log.Logger
}

// Monitor polls registered devices on a fixed interval. The interval is
// immutable after construction; the device set is not.
type Monitor struct {
	interval time.Duration
	client   *rest.Client
	logger   log.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.RWMutex
	devices  map[string]device.Device
	handlers []func(Event)

	// deliverMu serializes handler invocation across parallel polls.
	deliverMu sync.Mutex
}

// New creates a stopped monitor.
func New(config Config) *Monitor {
	interval := config.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	if interval < MinInterval {
		interval = MinInterval
	}
	client := config.Client
	if client == nil {
		client = rest.Default()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Monitor{
		interval: interval,
		client:   client,
		logger:   logger,
		devices:  make(map[string]device.Device),
	}
}

var (
	defaultMonitor     *Monitor
	defaultMonitorOnce sync.Once
)

// Default returns the process wide monitor, created with default
// configuration on first use. Its device set and handlers are shared by
// everything using it; independent components should construct their
// own with New.
func Default() *Monitor {
	defaultMonitorOnce.Do(func() {
		defaultMonitor = New(Config{})
	})
	return defaultMonitor
}

// Add registers devices for polling, replacing any registered device
// with the same serial. A device added while running is first polled on
// the next scheduled cycle, not immediately.
func (m *Monitor) Add(devices ...device.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, dev := range devices {
		m.devices[dev.Info().Serial] = dev
	}
}

// Remove unregisters devices by their serial.
func (m *Monitor) Remove(devices ...device.Device) {
	serials := make([]string, 0, len(devices))
	for _, dev := range devices {
		serials = append(serials, dev.Info().Serial)
	}
	m.RemoveSerial(serials...)
}

// RemoveSerial unregisters devices by serial. Unknown serials are
// ignored.
func (m *Monitor) RemoveSerial(serials ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, serial := range serials {
		delete(m.devices, serial)
	}
}

// Devices returns the registered devices sorted by serial.
func (m *Monitor) Devices() []device.Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	devices := make([]device.Device, 0, len(m.devices))
	for _, dev := range m.devices {
		devices = append(devices, dev)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Info().Serial < devices[j].Info().Serial
	})
	return devices
}

// Interval returns the effective polling interval after clamping.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// OnEvent registers a handler for poll outcomes. Handlers run one at a
// time in registration order; a blocking handler delays delivery of
// later events.
func (m *Monitor) OnEvent(handler func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
}

// Start begins polling: one cycle immediately, then one per interval.
// No-op when already running.
func (m *Monitor) Start() {
	if m.running.Swap(true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.logStateChange("STOPPED", "RUNNING", "start")

	m.wg.Add(1)
	go m.pollLoop(ctx)
}

// Stop cancels future cycles and returns once the scheduler is down.
// The device set stays intact for a later Start. Fetches already in
// flight are not cancelled and still deliver their outcome.
func (m *Monitor) Stop() {
	if !m.running.Swap(false) {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.logStateChange("RUNNING", "STOPPED", "stop")
}

func (m *Monitor) pollLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.cycle()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cycle()
		}
	}
}

// cycle snapshots the device set and fetches every device concurrently.
func (m *Monitor) cycle() {
	m.mu.RLock()
	devices := make([]device.Device, 0, len(m.devices))
	for _, dev := range m.devices {
		devices = append(devices, dev)
	}
	m.mu.RUnlock()

	for _, dev := range devices {
		snapshot := device.NewTelemetry(dev.Info().ProductType)
		if snapshot == nil {
			// Unknown product types have no fixed telemetry shape.
			continue
		}
		go m.poll(dev, snapshot)
	}
}

// poll fetches one device's telemetry and delivers the outcome. The
// fetch context is deliberately not the scheduler context: a Stop
// between request and response must not turn a good poll into a
// cancellation error.
func (m *Monitor) poll(dev device.Device, snapshot device.Telemetry) {
	info := dev.Info()

	version := info.APIVersion
	if version == "" {
		version = "v1"
	}
	err := m.client.DoJSON(context.Background(), rest.Request{
		BaseURL: dev.BaseURL(),
		Method:  http.MethodGet,
		Path:    "/api/" + version + "/data",
	}, snapshot)

	event := Event{Serial: info.Serial, Time: time.Now()}
	if err != nil {
		event.Err = err
		m.logPollFailure(info.Serial, err)
	} else {
		event.Telemetry = snapshot
	}
	m.deliver(event)
}

// deliver hands the event to every registered handler, serialized so
// handlers from parallel polls never overlap.
func (m *Monitor) deliver(event Event) {
	m.mu.RLock()
	handlers := make([]func(Event), len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.RUnlock()

	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	for _, handler := range handlers {
		handler(event)
	}
}

func (m *Monitor) logStateChange(oldState, newState, reason string) {
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionLocal,
		Source:    log.SourceMonitor,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityMonitor,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (m *Monitor) logPollFailure(serial string, err error) {
	kind := ""
	if failure, ok := rest.AsError(err); ok {
		kind = failure.Kind.String()
	}
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Source:    log.SourceMonitor,
		Category:  log.CategoryError,
		Serial:    serial,
		Error: &log.ErrorEventData{
			Source:  log.SourceMonitor,
			Message: err.Error(),
			Kind:    kind,
			Context: "poll " + serial,
		},
	})
}
