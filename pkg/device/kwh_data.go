package device

// KWhData is the telemetry snapshot shared by the kWh meter models.
// Single phase meters fill the aggregate fields, three phase meters
// additionally fill the per phase ones.
type KWhData struct {
	// WifiSSID is the network the appliance is joined to.
	WifiSSID *string `json:"wifi_ssid,omitempty"`
	// WifiStrength is the signal strength in percent.
	WifiStrength *float64 `json:"wifi_strength,omitempty"`

	TotalPowerImportKWh *float64 `json:"total_power_import_kwh,omitempty"`
	TotalPowerExportKWh *float64 `json:"total_power_export_kwh,omitempty"`

	ActivePowerW   *float64 `json:"active_power_w,omitempty"`
	ActivePowerL1W *float64 `json:"active_power_l1_w,omitempty"`
	ActivePowerL2W *float64 `json:"active_power_l2_w,omitempty"`
	ActivePowerL3W *float64 `json:"active_power_l3_w,omitempty"`

	ActiveVoltageV   *float64 `json:"active_voltage_v,omitempty"`
	ActiveVoltageL1V *float64 `json:"active_voltage_l1_v,omitempty"`
	ActiveVoltageL2V *float64 `json:"active_voltage_l2_v,omitempty"`
	ActiveVoltageL3V *float64 `json:"active_voltage_l3_v,omitempty"`

	ActiveCurrentA   *float64 `json:"active_current_a,omitempty"`
	ActiveCurrentL1A *float64 `json:"active_current_l1_a,omitempty"`
	ActiveCurrentL2A *float64 `json:"active_current_l2_a,omitempty"`
	ActiveCurrentL3A *float64 `json:"active_current_l3_a,omitempty"`

	ActiveReactivePowerVAR *float64 `json:"active_reactive_power_var,omitempty"`
	ActiveApparentPowerVA  *float64 `json:"active_apparent_power_va,omitempty"`
	ActivePowerFactor      *float64 `json:"active_power_factor,omitempty"`
	ActiveFrequencyHz      *float64 `json:"active_frequency_hz,omitempty"`
}
