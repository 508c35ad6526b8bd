package device

// P1Data is the telemetry snapshot of a P1 meter. Which fields the meter
// fills depends on the connected smart meter and its firmware, so every
// measurement is a pointer and absent means not reported.
type P1Data struct {
	// SMRVersion is the smart meter requirements version of the
	// connected meter, for example 50 for SMR 5.0.
	SMRVersion *int `json:"smr_version,omitempty"`
	// MeterModel is the connected meter's model name.
	MeterModel *string `json:"meter_model,omitempty"`
	// UniqueID identifies the connected meter.
	UniqueID *string `json:"unique_id,omitempty"`

	// WifiSSID is the network the appliance is joined to.
	WifiSSID *string `json:"wifi_ssid,omitempty"`
	// WifiStrength is the signal strength in percent.
	WifiStrength *float64 `json:"wifi_strength,omitempty"`

	// ActiveTariff is the currently active tariff.
	ActiveTariff *int `json:"active_tariff,omitempty"`

	TotalPowerImportKWh   *float64 `json:"total_power_import_kwh,omitempty"`
	TotalPowerImportT1KWh *float64 `json:"total_power_import_t1_kwh,omitempty"`
	TotalPowerImportT2KWh *float64 `json:"total_power_import_t2_kwh,omitempty"`
	TotalPowerImportT3KWh *float64 `json:"total_power_import_t3_kwh,omitempty"`
	TotalPowerImportT4KWh *float64 `json:"total_power_import_t4_kwh,omitempty"`
	TotalPowerExportKWh   *float64 `json:"total_power_export_kwh,omitempty"`
	TotalPowerExportT1KWh *float64 `json:"total_power_export_t1_kwh,omitempty"`
	TotalPowerExportT2KWh *float64 `json:"total_power_export_t2_kwh,omitempty"`
	TotalPowerExportT3KWh *float64 `json:"total_power_export_t3_kwh,omitempty"`
	TotalPowerExportT4KWh *float64 `json:"total_power_export_t4_kwh,omitempty"`

	ActivePowerW   *float64 `json:"active_power_w,omitempty"`
	ActivePowerL1W *float64 `json:"active_power_l1_w,omitempty"`
	ActivePowerL2W *float64 `json:"active_power_l2_w,omitempty"`
	ActivePowerL3W *float64 `json:"active_power_l3_w,omitempty"`

	ActiveVoltageL1V *float64 `json:"active_voltage_l1_v,omitempty"`
	ActiveVoltageL2V *float64 `json:"active_voltage_l2_v,omitempty"`
	ActiveVoltageL3V *float64 `json:"active_voltage_l3_v,omitempty"`

	ActiveCurrentL1A *float64 `json:"active_current_l1_a,omitempty"`
	ActiveCurrentL2A *float64 `json:"active_current_l2_a,omitempty"`
	ActiveCurrentL3A *float64 `json:"active_current_l3_a,omitempty"`

	ActiveFrequencyHz *float64 `json:"active_frequency_hz,omitempty"`

	VoltageSagL1Count   *int `json:"voltage_sag_l1_count,omitempty"`
	VoltageSagL2Count   *int `json:"voltage_sag_l2_count,omitempty"`
	VoltageSagL3Count   *int `json:"voltage_sag_l3_count,omitempty"`
	VoltageSwellL1Count *int `json:"voltage_swell_l1_count,omitempty"`
	VoltageSwellL2Count *int `json:"voltage_swell_l2_count,omitempty"`
	VoltageSwellL3Count *int `json:"voltage_swell_l3_count,omitempty"`

	AnyPowerFailCount  *int `json:"any_power_fail_count,omitempty"`
	LongPowerFailCount *int `json:"long_power_fail_count,omitempty"`

	ActivePowerAverageW *float64 `json:"active_power_average_w,omitempty"`

	// MontlyPowerPeakW is the running monthly power peak. The wire name
	// misspells "monthly"; it is kept verbatim for compatibility.
	MontlyPowerPeakW *float64 `json:"montly_power_peak_w,omitempty"`
	// MontlyPowerPeakTimestamp is when the peak was measured. Same
	// misspelled wire name as MontlyPowerPeakW.
	MontlyPowerPeakTimestamp *Timestamp `json:"montly_power_peak_timestamp,omitempty"`

	TotalGasM3   *float64   `json:"total_gas_m3,omitempty"`
	GasTimestamp *Timestamp `json:"gas_timestamp,omitempty"`
	GasUniqueID  *string    `json:"gas_unique_id,omitempty"`

	// External lists readings from meters connected through the P1
	// meter, such as a gas or water meter.
	External []ExternalDevice `json:"external,omitempty"`
}
