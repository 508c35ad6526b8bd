package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Service constants for mDNS.
const (
	// ServiceType is the service appliances announce.
	ServiceType = "_hwenergy._tcp"

	// Domain is the mDNS domain.
	Domain = "local."
)

// TXT record key constants.
const (
	TXTKeyProductName = "product_name" // Human-readable product name
	TXTKeyProductType = "product_type" // Product type token (e.g. "HWE-P1")
	TXTKeySerial      = "serial"       // Serial number
	TXTKeyPath        = "path"         // API base path (e.g. "/api/v1")
	TXTKeyAPIEnabled  = "api_enabled"  // Local API switch, "1" or "0"
)

// Timing constants.
const (
	// DefaultDebounce is the quiet period after the last store mutation
	// before change handlers run.
	DefaultDebounce = 750 * time.Millisecond
)

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingRequired  = errors.New("missing required TXT key")
	ErrNoAddresses      = errors.New("no addresses to probe")
	ErrNotAdvertising   = errors.New("no active announcement")
)

// DiscoveredDevice describes one announced appliance. Serial is the global
// identity key; Name is the mDNS instance name. Host, Port and Addrs form
// the endpoint reference into mDNS: they are replaced wholesale when a new
// announcement arrives and never mutated in place.
type DiscoveredDevice struct {
	// Name is the mDNS instance name (e.g. "energysocket-25C2F1").
	Name string

	// ProductName is the human-readable product name (from TXT
	// "product_name").
	ProductName string

	// ProductType is the raw product type token (from TXT "product_type").
	// Kept as announced; the device layer resolves it to a variant.
	ProductType string

	// Serial is the appliance serial number (from TXT "serial").
	Serial string

	// Path is the announced API base path (from TXT "path").
	Path string

	// APIEnabled reports whether the local API is switched on (from TXT
	// "api_enabled").
	APIEnabled bool

	// Host is the announced hostname (e.g. "energysocket-25C2F1.local.").
	Host string

	// Port is the announced service port.
	Port int

	// Addrs contains the resolved IP addresses, IPv4 first.
	Addrs []string
}

// ResolveBaseURL resolves the endpoint reference to a concrete base URL via
// a transient TCP probe: connect to the first reachable target, read the
// negotiated remote address back from the connection, then disconnect. The
// scheme is https exactly when the port is 443. IPv6 hosts are bracketed.
func (d *DiscoveredDevice) ResolveBaseURL(ctx context.Context) (string, error) {
	port := strconv.Itoa(d.Port)
	targets := make([]string, 0, len(d.Addrs)+1)
	for _, addr := range d.Addrs {
		targets = append(targets, net.JoinHostPort(addr, port))
	}
	if d.Host != "" {
		targets = append(targets, net.JoinHostPort(strings.TrimSuffix(d.Host, "."), port))
	}
	if len(targets) == 0 {
		return "", ErrNoAddresses
	}

	var dialer net.Dialer
	var lastErr error
	for _, target := range targets {
		conn, err := dialer.DialContext(ctx, "tcp", target)
		if err != nil {
			lastErr = err
			continue
		}
		remote := conn.RemoteAddr().String()
		conn.Close()

		host, remotePort, err := net.SplitHostPort(remote)
		if err != nil {
			lastErr = err
			continue
		}
		portNum, err := strconv.Atoi(remotePort)
		if err != nil {
			lastErr = err
			continue
		}
		return composeBaseURL(host, portNum), nil
	}
	return "", lastErr
}

// composeBaseURL builds a base URL from a probed host and port. Default
// ports are omitted; an IPv6 zone is escaped per RFC 6874.
func composeBaseURL(host string, port int) string {
	scheme := "http"
	if port == 443 {
		scheme = "https"
	}
	if strings.Contains(host, ":") {
		host = "[" + strings.ReplaceAll(host, "%", "%25") + "]"
	}
	if port == 80 || port == 443 {
		return scheme + "://" + host
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}
