package device

// State is the controllable state of an energy socket. All fields are
// pointers: a partial update sends only the fields that are set and the
// appliance leaves the rest untouched.
type State struct {
	// PowerOn reports whether the relay is switched on.
	PowerOn *bool `json:"power_on,omitempty"`
	// SwitchLock locks the relay in the on position. While locked the
	// appliance refuses power off requests.
	SwitchLock *bool `json:"switch_lock,omitempty"`
	// Brightness is the status LED brightness, 0 to 255.
	Brightness *uint8 `json:"brightness,omitempty"`
}
