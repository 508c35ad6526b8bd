package device

// Type identifies an appliance model family by its product type token.
// The type is string backed so unrecognized tokens survive decoding and
// re-encoding verbatim.
type Type string

const (
	// TypeP1Meter is the P1 smart meter dongle.
	TypeP1Meter Type = "HWE-P1"
	// TypeEnergySocket is the switchable energy socket.
	TypeEnergySocket Type = "HWE-SKT"
	// TypeWatermeter is the water meter reader.
	TypeWatermeter Type = "HWE-WTR"
	// TypeKWhMeter1Phase is the single phase DIN rail kWh meter.
	TypeKWhMeter1Phase Type = "HWE-KWH1"
	// TypeKWhMeter3Phase is the three phase DIN rail kWh meter.
	TypeKWhMeter3Phase Type = "HWE-KWH3"
	// TypeKWhMeter1PhaseEastron is the rebranded single phase Eastron meter.
	TypeKWhMeter1PhaseEastron Type = "SDM230-wifi"
	// TypeKWhMeter3PhaseEastron is the rebranded three phase Eastron meter.
	TypeKWhMeter3PhaseEastron Type = "SDM630-wifi"
)

// ResolveType maps a raw product type token to a Type. Every token
// resolves: tokens outside the documented set compare unequal to all
// constants and load as [UnknownDevice].
func ResolveType(raw string) Type {
	return Type(raw)
}

// Known reports whether t is one of the documented product types.
func (t Type) Known() bool {
	switch t {
	case TypeP1Meter, TypeEnergySocket, TypeWatermeter,
		TypeKWhMeter1Phase, TypeKWhMeter3Phase,
		TypeKWhMeter1PhaseEastron, TypeKWhMeter3PhaseEastron:
		return true
	}
	return false
}

// String returns the raw product type token.
func (t Type) String() string {
	return string(t)
}

// newDeviceFor returns the zero variant for a product type.
func newDeviceFor(t Type) Device {
	switch t {
	case TypeP1Meter:
		return &P1Meter{}
	case TypeEnergySocket:
		return &EnergySocket{}
	case TypeWatermeter:
		return &Watermeter{}
	case TypeKWhMeter1Phase, TypeKWhMeter3Phase,
		TypeKWhMeter1PhaseEastron, TypeKWhMeter3PhaseEastron:
		return &KWhMeter{}
	default:
		return &UnknownDevice{}
	}
}

// NewTelemetry returns the zero telemetry snapshot for a product type,
// or nil when the type has no fixed telemetry shape.
func NewTelemetry(t Type) Telemetry {
	switch t {
	case TypeP1Meter:
		return &P1Data{}
	case TypeEnergySocket:
		return &SocketData{}
	case TypeWatermeter:
		return &WaterData{}
	case TypeKWhMeter1Phase, TypeKWhMeter3Phase,
		TypeKWhMeter1PhaseEastron, TypeKWhMeter3PhaseEastron:
		return &KWhData{}
	default:
		return nil
	}
}

// Telemetry is implemented by every typed telemetry snapshot.
type Telemetry interface {
	telemetry()
}

func (*P1Data) telemetry()     {}
func (*SocketData) telemetry() {}
func (*WaterData) telemetry()  {}
func (*KWhData) telemetry()    {}
