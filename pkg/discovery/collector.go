package discovery

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// CollectorConfig configures a Collector.
type CollectorConfig struct {
	// Browser supplies the announcement streams. Defaults to an
	// MDNSBrowser on all interfaces.
	Browser Browser

	// Debounce is the quiet period after the last store mutation before
	// change handlers run. Defaults to DefaultDebounce.
	Debounce time.Duration

	// Logger receives diagnostic events. Defaults to a NoopLogger.
	Logger log.Logger
}

// Collector maintains the current set of announced appliances, keyed by
// serial. Announcements for a known serial replace the stored descriptor
// wholesale; withdrawals remove it. Bursts of mutations coalesce into a
// single change notification per quiet period.
type Collector struct {
	browser  Browser
	debounce time.Duration
	logger   log.Logger

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	devices   map[string]*DiscoveredDevice // keyed by serial
	instances map[string]string            // instance name -> serial
	timer     *time.Timer
	handlers  []func()

	// handlerMu serializes change handler invocation so handlers never
	// need their own synchronization.
	handlerMu sync.Mutex
}

// NewCollector creates a collector. The zero Config is valid.
func NewCollector(config CollectorConfig) *Collector {
	if config.Browser == nil {
		config.Browser = NewMDNSBrowser(BrowserConfig{Logger: config.Logger})
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}
	return &Collector{
		browser:   config.Browser,
		debounce:  config.Debounce,
		logger:    config.Logger,
		devices:   make(map[string]*DiscoveredDevice),
		instances: make(map[string]string),
	}
}

var (
	defaultCollector     *Collector
	defaultCollectorOnce sync.Once
)

// Default returns the lazily-created process-wide collector with default
// configuration. Construct a Collector of your own when you need a custom
// browser, debounce or diagnostics.
func Default() *Collector {
	defaultCollectorOnce.Do(func() {
		defaultCollector = NewCollector(CollectorConfig{})
	})
	return defaultCollector
}

// Start begins collecting. It clears any previously collected set, starts
// the browser and spawns the consume loop. Calling Start on a running
// collector is a no-op.
func (c *Collector) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return nil
	}

	c.mu.Lock()
	c.devices = make(map[string]*DiscoveredDevice)
	c.instances = make(map[string]string)
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	announced, withdrawn, err := c.browser.Browse(runCtx)
	if err != nil {
		cancel()
		c.running.Store(false)
		return err
	}

	c.logStateChange("STOPPED", "RUNNING", "start")

	c.wg.Add(1)
	go c.consume(runCtx, announced, withdrawn)
	return nil
}

// Stop halts consumption. The last known device set is retained, and an
// already armed debounce timer still fires. Calling Stop on a stopped
// collector is a no-op.
func (c *Collector) Stop() {
	if !c.running.Swap(false) {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	c.logStateChange("RUNNING", "STOPPED", "stop")
}

// OnChange registers a handler invoked once per quiet period after store
// mutations. Handlers run serialized and outside the store lock, so they
// may query the collector freely.
func (c *Collector) OnChange(handler func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Devices returns the current device set, ordered by serial.
func (c *Collector) Devices() []*DiscoveredDevice {
	c.mu.Lock()
	defer c.mu.Unlock()

	devices := make([]*DiscoveredDevice, 0, len(c.devices))
	for _, d := range c.devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Serial < devices[j].Serial
	})
	return devices
}

// Device returns the device with the given serial.
func (c *Collector) Device(serial string) (*DiscoveredDevice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.devices[serial]
	return d, ok
}

// DevicesOfType returns the devices announcing the given raw product type,
// ordered by serial.
func (c *Collector) DevicesOfType(productType string) []*DiscoveredDevice {
	all := c.Devices()
	matching := make([]*DiscoveredDevice, 0, len(all))
	for _, d := range all {
		if d.ProductType == productType {
			matching = append(matching, d)
		}
	}
	return matching
}

// EnabledDevices returns the devices whose local API is switched on,
// ordered by serial.
func (c *Collector) EnabledDevices() []*DiscoveredDevice {
	all := c.Devices()
	enabled := make([]*DiscoveredDevice, 0, len(all))
	for _, d := range all {
		if d.APIEnabled {
			enabled = append(enabled, d)
		}
	}
	return enabled
}

// consume applies announcements and withdrawals to the store until both
// streams end or the context is cancelled.
func (c *Collector) consume(ctx context.Context, announced <-chan *DiscoveredDevice, withdrawn <-chan string) {
	defer c.wg.Done()

	for announced != nil || withdrawn != nil {
		select {
		case d, ok := <-announced:
			if !ok {
				announced = nil
				continue
			}
			c.upsert(d)

		case instance, ok := <-withdrawn:
			if !ok {
				withdrawn = nil
				continue
			}
			c.withdraw(instance)

		case <-ctx.Done():
			return
		}
	}
}

// upsert replaces the stored descriptor for an announced serial.
func (c *Collector) upsert(d *DiscoveredDevice) {
	c.mu.Lock()
	// An instance that re-announced under a new serial leaves no stale
	// entry behind.
	if prevSerial, ok := c.instances[d.Name]; ok && prevSerial != d.Serial {
		delete(c.devices, prevSerial)
	}
	c.instances[d.Name] = d.Serial
	c.devices[d.Serial] = d
	c.armTimerLocked()
	c.mu.Unlock()

	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Source:    log.SourceDiscovery,
		Category:  log.CategoryAnnounce,
		Serial:    d.Serial,
		Announce: &log.AnnounceEvent{
			Instance:    d.Name,
			ProductType: d.ProductType,
		},
	})
}

// withdraw removes the device behind a withdrawn instance name.
func (c *Collector) withdraw(instance string) {
	c.mu.Lock()
	serial, ok := c.instances[instance]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.instances, instance)
	delete(c.devices, serial)
	c.armTimerLocked()
	c.mu.Unlock()

	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Source:    log.SourceDiscovery,
		Category:  log.CategoryAnnounce,
		Serial:    serial,
		Announce: &log.AnnounceEvent{
			Instance:  instance,
			Withdrawn: true,
		},
	})
}

// armTimerLocked resets the debounce timer. Callers hold mu.
func (c *Collector) armTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.notify)
}

// notify runs the registered change handlers.
func (c *Collector) notify() {
	c.mu.Lock()
	handlers := append(([]func())(nil), c.handlers...)
	c.mu.Unlock()

	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	for _, handler := range handlers {
		handler()
	}
}

func (c *Collector) logStateChange(oldState, newState, reason string) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionLocal,
		Source:    log.SourceDiscovery,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityCollector,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
