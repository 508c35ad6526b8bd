// Package discovery implements mDNS/DNS-SD discovery for hwenergy
// appliances.
//
// # Announcements (_hwenergy._tcp)
//
// Every appliance announces one service instance on the local domain.
// TXT records carry: product_name, product_type, serial, path (API base
// path) and api_enabled ("1" or "0" literally; anything else makes the
// record malformed). A record missing a required key is dropped before it
// reaches any consumer.
//
// # Browser
//
// A Browser turns the raw zeroconf entry stream into typed announcement
// and withdrawal streams. MDNSBrowser is the production implementation;
// tests substitute their own.
//
// # Collector
//
// The Collector consumes a Browser and maintains the current set of
// appliances keyed by serial. Announcements for a known serial replace the
// stored descriptor wholesale, withdrawals remove it, and a debounce timer
// coalesces each burst of mutations into a single change notification.
// Stopping the collector retains the last known set.
//
// # Base URL resolution
//
// A DiscoveredDevice holds an endpoint reference (host, port, addresses),
// not a base URL. ResolveBaseURL performs a transient TCP probe: connect,
// read the negotiated remote address, derive https for port 443 else http,
// disconnect. The device layer turns the result into a loaded device.
//
// # Advertiser
//
// The Advertiser publishes an appliance announcement, used by the
// simulator to appear on the network exactly like real hardware.
package discovery
