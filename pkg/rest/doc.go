// Package rest implements the HTTP+JSON request pipeline shared by every
// device operation in the hwenergy client.
//
// A Client issues single-attempt exchanges against an appliance base URL and
// classifies every failure into a closed Kind taxonomy: encoding/decoding
// failures, transport-level failures (timeout, unreachable, DNS, TLS) and
// HTTP-status-derived failures. Exactly one Kind is assigned per error, and
// transport classification takes priority over a caller-supplied fallback.
//
// Callers choose the receive shape per call:
//
//	err := client.DoVoid(ctx, req)                // no payload expected
//	obj, err := client.DoObject(ctx, req)         // loose JSON object
//	err = client.DoJSON(ctx, req, &data)          // strictly typed decode
//	raw, err := client.DoRaw(ctx, req)            // bytes, no decoding
//
// Every call is numbered by an atomic sequence counter and produces a start
// event plus exactly one terminal event on the configured log.Logger,
// correlated by the client instance ID. The pipeline never retries; retry
// policy belongs to the caller.
package rest
