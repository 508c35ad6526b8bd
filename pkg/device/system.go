package device

// SystemConfig is the system configuration block of an appliance.
type SystemConfig struct {
	// CloudEnabled reports whether the appliance talks to the vendor
	// cloud. Switching it off keeps the appliance local only.
	CloudEnabled *bool `json:"cloud_enabled,omitempty"`
}
