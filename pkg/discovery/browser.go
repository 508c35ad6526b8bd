package discovery

import (
	"context"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// Browser provides appliance announcement streams.
type Browser interface {
	// Browse starts browsing for appliance announcements. It returns an
	// announcement stream and a withdrawal stream carrying the withdrawn
	// instance names. Both channels are closed when the context is
	// cancelled. Malformed announcements are dropped before they reach the
	// channels.
	Browse(ctx context.Context) (announced <-chan *DiscoveredDevice, withdrawn <-chan string, err error)
}

// BrowserConfig configures an MDNSBrowser.
type BrowserConfig struct {
	// Interface specifies which network interface to browse on.
	// Empty string means all interfaces.
	Interface string

	// Logger receives diagnostic events for dropped announcements.
	// Defaults to a NoopLogger.
	Logger log.Logger
}
