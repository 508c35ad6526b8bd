package device

// ExternalDeviceType classifies a meter that reports through the P1
// meter instead of answering on the network itself. String backed, so
// types added by newer firmware survive round trips.
type ExternalDeviceType string

const (
	// ExternalGasMeter is a gas meter on the P1 bus.
	ExternalGasMeter ExternalDeviceType = "gas_meter"
	// ExternalHeatMeter is a heat meter on the P1 bus.
	ExternalHeatMeter ExternalDeviceType = "heat_meter"
	// ExternalWarmWaterMeter is a warm water meter on the P1 bus.
	ExternalWarmWaterMeter ExternalDeviceType = "warm_water_meter"
	// ExternalWaterMeter is a water meter on the P1 bus.
	ExternalWaterMeter ExternalDeviceType = "water_meter"
	// ExternalInletHeatMeter is an inlet heat meter on the P1 bus.
	ExternalInletHeatMeter ExternalDeviceType = "inlet_heat_meter"
)

// ExternalDevice is one reading from an externally connected meter,
// reported as part of the P1 telemetry snapshot.
type ExternalDevice struct {
	// UniqueID identifies the external meter.
	UniqueID string `json:"unique_id"`
	// Type classifies the meter.
	Type ExternalDeviceType `json:"type"`
	// Timestamp is the reading time in the meter's local zone.
	Timestamp Timestamp `json:"timestamp"`
	// Value is the cumulative reading.
	Value float64 `json:"value"`
	// Unit is the unit of Value, for example "m3" or "GJ".
	Unit string `json:"unit"`
}
