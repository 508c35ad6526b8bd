package device

import (
	"context"
	"net/http"

	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

// P1Meter is the smart meter dongle. It relays whatever the connected
// utility meter reports, including readings from external meters on the
// same bus.
type P1Meter struct {
	base
}

// Data fetches the current telemetry snapshot.
func (d *P1Meter) Data(ctx context.Context) (*P1Data, error) {
	var data P1Data
	if err := d.getJSON(ctx, "data", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Telegram fetches the most recent raw DSMR telegram.
func (d *P1Meter) Telegram(ctx context.Context) (string, error) {
	return d.telegram(ctx)
}

// Identify makes the appliance blink its status light.
func (d *P1Meter) Identify(ctx context.Context) error {
	return d.identify(ctx)
}

// SystemConfig fetches the current system configuration.
func (d *P1Meter) SystemConfig(ctx context.Context) (*SystemConfig, error) {
	return d.systemConfig(ctx)
}

// SetCloudEnabled switches cloud communication on or off.
func (d *P1Meter) SetCloudEnabled(ctx context.Context, enabled bool) (*SystemConfig, error) {
	return d.setSystemConfig(ctx, SystemConfig{CloudEnabled: &enabled})
}

// EnergySocket is the switchable socket. Besides telemetry it exposes
// relay state, switch lock and status LED brightness.
type EnergySocket struct {
	base
}

// Data fetches the current telemetry snapshot.
func (d *EnergySocket) Data(ctx context.Context) (*SocketData, error) {
	var data SocketData
	if err := d.getJSON(ctx, "data", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// State fetches the current controllable state.
func (d *EnergySocket) State(ctx context.Context) (*State, error) {
	return d.state(ctx)
}

// SetState applies the set fields of state.
func (d *EnergySocket) SetState(ctx context.Context, state State) (*State, error) {
	return d.setState(ctx, state)
}

// SetPowerOn switches the relay.
func (d *EnergySocket) SetPowerOn(ctx context.Context, on bool) (*State, error) {
	return d.setState(ctx, State{PowerOn: &on})
}

// SetSwitchLock locks or unlocks the relay in the on position.
func (d *EnergySocket) SetSwitchLock(ctx context.Context, locked bool) (*State, error) {
	return d.setState(ctx, State{SwitchLock: &locked})
}

// SetBrightness sets the status LED brightness, 0 to 255.
func (d *EnergySocket) SetBrightness(ctx context.Context, brightness uint8) (*State, error) {
	return d.setState(ctx, State{Brightness: &brightness})
}

// Identify makes the appliance blink its status light.
func (d *EnergySocket) Identify(ctx context.Context) error {
	return d.identify(ctx)
}

// SystemConfig fetches the current system configuration.
func (d *EnergySocket) SystemConfig(ctx context.Context) (*SystemConfig, error) {
	return d.systemConfig(ctx)
}

// SetCloudEnabled switches cloud communication on or off.
func (d *EnergySocket) SetCloudEnabled(ctx context.Context, enabled bool) (*SystemConfig, error) {
	return d.setSystemConfig(ctx, SystemConfig{CloudEnabled: &enabled})
}

// Watermeter is the water meter reader.
type Watermeter struct {
	base
}

// Data fetches the current telemetry snapshot.
func (d *Watermeter) Data(ctx context.Context) (*WaterData, error) {
	var data WaterData
	if err := d.getJSON(ctx, "data", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Identify makes the appliance blink its status light.
func (d *Watermeter) Identify(ctx context.Context) error {
	return d.identify(ctx)
}

// SystemConfig fetches the current system configuration.
func (d *Watermeter) SystemConfig(ctx context.Context) (*SystemConfig, error) {
	return d.systemConfig(ctx)
}

// SetCloudEnabled switches cloud communication on or off.
func (d *Watermeter) SetCloudEnabled(ctx context.Context, enabled bool) (*SystemConfig, error) {
	return d.setSystemConfig(ctx, SystemConfig{CloudEnabled: &enabled})
}

// KWhMeter covers the four DIN rail kWh meter models. The models share
// one telemetry shape; three phase meters fill the per phase fields.
type KWhMeter struct {
	base
}

// Data fetches the current telemetry snapshot.
func (d *KWhMeter) Data(ctx context.Context) (*KWhData, error) {
	var data KWhData
	if err := d.getJSON(ctx, "data", &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// SystemConfig fetches the current system configuration.
func (d *KWhMeter) SystemConfig(ctx context.Context) (*SystemConfig, error) {
	return d.systemConfig(ctx)
}

// SetCloudEnabled switches cloud communication on or off.
func (d *KWhMeter) SetCloudEnabled(ctx context.Context, enabled bool) (*SystemConfig, error) {
	return d.setSystemConfig(ctx, SystemConfig{CloudEnabled: &enabled})
}

// UnknownDevice is the open variant for product types outside the
// documented set. The raw token stays available through Info and
// telemetry is served as an open JSON object.
type UnknownDevice struct {
	base
}

// Data fetches the telemetry snapshot as an open JSON object.
func (d *UnknownDevice) Data(ctx context.Context) (map[string]any, error) {
	if d.baseURL == "" {
		return nil, ErrUnknownBaseURL
	}
	return d.client.DoObject(ctx, rest.Request{
		BaseURL: d.baseURL,
		Method:  http.MethodGet,
		Path:    d.endpoint("data"),
	})
}

var (
	_ Device = (*P1Meter)(nil)
	_ Device = (*EnergySocket)(nil)
	_ Device = (*Watermeter)(nil)
	_ Device = (*KWhMeter)(nil)
	_ Device = (*UnknownDevice)(nil)

	_ Identifiable = (*P1Meter)(nil)
	_ Identifiable = (*EnergySocket)(nil)
	_ Identifiable = (*Watermeter)(nil)

	_ StateController = (*EnergySocket)(nil)

	_ TelegramProvider = (*P1Meter)(nil)

	_ SystemConfigurer = (*P1Meter)(nil)
	_ SystemConfigurer = (*EnergySocket)(nil)
	_ SystemConfigurer = (*Watermeter)(nil)
	_ SystemConfigurer = (*KWhMeter)(nil)
)
