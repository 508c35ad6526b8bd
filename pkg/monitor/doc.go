// Package monitor polls a dynamic set of loaded devices on a fixed
// interval and delivers one event per device per cycle.
//
// The set is keyed by serial: adding a device whose serial is already
// registered replaces the old entry. Start runs one cycle immediately
// and then one per interval; a device added in between waits for the
// next scheduled cycle. Within a cycle every device is fetched
// concurrently, so one slow or failing appliance never delays the
// others. Devices whose product type has no fixed telemetry shape are
// skipped.
//
// Fetch outcomes, success or failure, are delivered to handlers
// registered with OnEvent. Delivery is serialized: handlers are never
// called concurrently, from any number of parallel fetches, so
// consumers need no locking of their own.
//
// Stop cancels future cycles but not fetches already in flight; those
// complete against the transport's own limits and still deliver their
// event. The device set survives Stop, so a later Start resumes with
// the same appliances.
package monitor
