package log

import (
	"time"
)

// Event represents a diagnostic event captured anywhere in the client.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ClientID identifies the request client instance that produced the
	// event (UUID). Empty for events not tied to a client.
	ClientID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates event flow relative to this process.
	Direction Direction `cbor:"3,keyasint"`

	// Source is the component that captured the event.
	Source Source `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Serial is the appliance serial, when known.
	Serial string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Exchange    *ExchangeEvent    `cbor:"10,keyasint,omitempty"` // HTTP request/response
	Announce    *AnnounceEvent    `cbor:"11,keyasint,omitempty"` // mDNS announce/withdraw
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Collector/monitor lifecycle
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors from any source
}

// Direction indicates the direction of event flow.
type Direction uint8

const (
	// DirectionIn indicates data arriving from the network.
	DirectionIn Direction = 0
	// DirectionOut indicates data leaving for the network.
	DirectionOut Direction = 1
	// DirectionLocal indicates a locally originated event with no peer.
	DirectionLocal Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	case DirectionLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Source indicates which component captured the event.
type Source uint8

const (
	// SourceREST is the HTTP request pipeline.
	SourceREST Source = 0
	// SourceDiscovery is the mDNS browse/collect layer.
	SourceDiscovery Source = 1
	// SourceMonitor is the polling monitor.
	SourceMonitor Source = 2
	// SourceDevice is the device resolution/operation layer.
	SourceDevice Source = 3
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceREST:
		return "REST"
	case SourceDiscovery:
		return "DISCOVERY"
	case SourceMonitor:
		return "MONITOR"
	case SourceDevice:
		return "DEVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryExchange indicates an HTTP exchange (request or response).
	CategoryExchange Category = 0
	// CategoryAnnounce indicates a service announcement or withdrawal.
	CategoryAnnounce Category = 1
	// CategoryState indicates a lifecycle state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryExchange:
		return "EXCHANGE"
	case CategoryAnnounce:
		return "ANNOUNCE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ExchangeEvent captures one half of an HTTP exchange. A request produces a
// Direction out event without Status; the terminal outcome produces a
// Direction in event carrying the status or is replaced by an Error event.
// Seq correlates the two (unique per ClientID).
type ExchangeEvent struct {
	// Seq is the pipeline sequence number for this call.
	Seq uint64 `cbor:"1,keyasint"`

	// Method is the HTTP method.
	Method string `cbor:"2,keyasint"`

	// URL is the absolute request URL.
	URL string `cbor:"3,keyasint"`

	// Status is the HTTP status code (response events only).
	Status int `cbor:"4,keyasint,omitempty"`

	// BodySize is the payload size in bytes, when a payload was present.
	BodySize int `cbor:"5,keyasint,omitempty"`

	// Duration is the elapsed time from request to response (response only).
	// Stored as nanoseconds.
	Duration *time.Duration `cbor:"6,keyasint,omitempty"`
}

// AnnounceEvent captures an mDNS service announcement or withdrawal.
type AnnounceEvent struct {
	// Instance is the mDNS service instance name.
	Instance string `cbor:"1,keyasint"`

	// ProductType is the raw product type token from the TXT record.
	ProductType string `cbor:"2,keyasint,omitempty"`

	// Withdrawn is true when the service disappeared from the network.
	Withdrawn bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures collector and monitor lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityCollector indicates a discovery collector state change.
	StateEntityCollector StateEntity = 0
	// StateEntityMonitor indicates a polling monitor state change.
	StateEntityMonitor StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityCollector:
		return "COLLECTOR"
	case StateEntityMonitor:
		return "MONITOR"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors from any source.
type ErrorEventData struct {
	// Source where the error occurred.
	Source Source `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the classified error kind name (if applicable).
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
