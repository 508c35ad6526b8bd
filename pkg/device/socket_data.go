package device

// SocketData is the telemetry snapshot of an energy socket.
type SocketData struct {
	// WifiSSID is the network the appliance is joined to.
	WifiSSID *string `json:"wifi_ssid,omitempty"`
	// WifiStrength is the signal strength in percent.
	WifiStrength *float64 `json:"wifi_strength,omitempty"`

	TotalPowerImportKWh   *float64 `json:"total_power_import_kwh,omitempty"`
	TotalPowerImportT1KWh *float64 `json:"total_power_import_t1_kwh,omitempty"`
	TotalPowerExportKWh   *float64 `json:"total_power_export_kwh,omitempty"`
	TotalPowerExportT1KWh *float64 `json:"total_power_export_t1_kwh,omitempty"`

	ActivePowerW   *float64 `json:"active_power_w,omitempty"`
	ActivePowerL1W *float64 `json:"active_power_l1_w,omitempty"`

	ActiveVoltageV *float64 `json:"active_voltage_v,omitempty"`
	ActiveCurrentA *float64 `json:"active_current_a,omitempty"`

	ActiveReactivePowerVAR *float64 `json:"active_reactive_power_var,omitempty"`
	ActiveApparentPowerVA  *float64 `json:"active_apparent_power_va,omitempty"`
	ActivePowerFactor      *float64 `json:"active_power_factor,omitempty"`
	ActiveFrequencyHz      *float64 `json:"active_frequency_hz,omitempty"`
}
