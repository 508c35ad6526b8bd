// Package device models the appliances behind the local HTTP API and
// loads them over the network.
//
// Every appliance answers GET /api with a small identity block: product
// name, product type, serial, firmware version and API version. The
// product type token selects one of a closed set of variants:
//
//   - [P1Meter] for HWE-P1
//   - [EnergySocket] for HWE-SKT
//   - [Watermeter] for HWE-WTR
//   - [KWhMeter] for the four kWh meter models
//   - [UnknownDevice] for everything else
//
// [UnknownDevice] keeps the raw product type token and exposes telemetry
// as an open JSON object, so an appliance model released after this
// package still loads.
//
// # Loading
//
// [LoadAddress] turns a bare IP address or host name into a loaded
// variant; [LoadDiscovered] does the same for an announcement collected
// from the local network. Both validate their input before touching the
// network, probe GET /api, pick the variant for the reported product
// type and stamp the base URL into it. A device constructed any other
// way has no base URL and every operation on it fails with
// [ErrUnknownBaseURL].
//
// # Capabilities
//
// Variants differ in behaviour, not wire shape. Capability interfaces
// describe what a variant can do beyond serving telemetry:
// [Identifiable], [StateController], [TelegramProvider] and
// [SystemConfigurer]. Callers holding a [Device] assert for the
// capability they need.
//
// # Telemetry
//
// Each variant except [UnknownDevice] has a typed telemetry snapshot
// ([P1Data], [SocketData], [WaterData], [KWhData]) whose fields mirror
// the wire names exactly, including the upstream misspelling of
// "monthly". All measurement fields are pointers: absent means the
// firmware did not report the value, which is distinct from zero.
package device
