// Package log records the diagnostic event stream of the hwenergy client.
//
// Every part of the library that talks to the network (the REST client,
// the mDNS collector, the monitor) reports what it does as typed events:
// request/response exchanges, service announcements, lifecycle
// transitions and errors. The stream is machine readable and meant for
// capture, not for humans; operational logging stays on slog.
//
// # Wiring
//
// Each component takes a Logger in its config. Absent one, events are
// discarded:
//
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
// mirrors events onto the process log at debug level, while
//
//	cfg.Logger, _ = log.NewFileLogger("/var/log/hwenergy/client.hwlog")
//
// captures them as CBOR records. NewMultiLogger combines sinks when both
// are wanted at once.
//
// # Event Types
//
// Events are captured from multiple sources:
//   - REST: request/response exchanges (ExchangeEvent), correlated by the
//     client instance ID and a per-call sequence number
//   - Discovery: service announcements and withdrawals (AnnounceEvent)
//   - Collector/Monitor: lifecycle transitions (StateChangeEvent)
//
// Errors from any source have a dedicated event type.
//
// # File Format
//
// A log file is a plain concatenation of CBOR records carrying the .hwlog
// extension. Reader streams records back out of a file, and the
// hwenergy-log tool adds viewing, filtering, statistics and export.
package log
