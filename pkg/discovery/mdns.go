package discovery

import (
	"context"
	"net"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// MDNSBrowser implements the Browser interface using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	logger log.Logger
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	logger := config.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &MDNSBrowser{
		config: config,
		logger: logger,
	}
}

// Browse starts browsing for appliance announcements. Raw zeroconf entries
// are converted to DiscoveredDevices; entries whose TXT records do not
// decode strictly are dropped with a diagnostic event and never surface.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *DiscoveredDevice, <-chan string, error) {
	announced := make(chan *DiscoveredDevice)
	withdrawn := make(chan string)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(announced)
		defer close(withdrawn)

		for entries != nil || removed != nil {
			select {
			case entry, ok := <-entries:
				if !ok {
					entries = nil
					continue
				}
				d, err := deviceFromEntry(entry)
				if err != nil {
					b.dropEntry(entry.Instance, err)
					continue
				}
				select {
				case announced <- d:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				select {
				case withdrawn <- entry.Instance:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.browserOptions()...)
	}()

	return announced, withdrawn, nil
}

// dropEntry records a malformed announcement. Dropped records are a
// diagnostic concern only and never surface to consumers.
func (b *MDNSBrowser) dropEntry(instance string, err error) {
	b.logger.Log(log.Event{
		Timestamp: time.Now(),
		Direction: log.DirectionIn,
		Source:    log.SourceDiscovery,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceDiscovery,
			Message: err.Error(),
			Context: "announce " + instance,
		},
	})
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	// Select specific interface if configured
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// Ensure MDNSBrowser implements Browser interface.
var _ Browser = (*MDNSBrowser)(nil)
