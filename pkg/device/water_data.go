package device

// WaterData is the telemetry snapshot of a water meter.
type WaterData struct {
	// WifiSSID is the network the appliance is joined to.
	WifiSSID *string `json:"wifi_ssid,omitempty"`
	// WifiStrength is the signal strength in percent.
	WifiStrength *float64 `json:"wifi_strength,omitempty"`

	// TotalLiterM3 is the cumulative consumption in cubic meters.
	TotalLiterM3 *float64 `json:"total_liter_m3,omitempty"`
	// ActiveLiterLPM is the current flow in liters per minute.
	ActiveLiterLPM *float64 `json:"active_liter_lpm,omitempty"`
	// TotalLiterOffsetM3 is the user set offset aligning the counter
	// with the physical meter.
	TotalLiterOffsetM3 *float64 `json:"total_liter_offset_m3,omitempty"`
}
