package device

import "errors"

var (
	// ErrInvalidAddress is returned when an address or host name cannot
	// form a valid base URL. No network traffic has happened.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrIPLookupFailed is returned when none of a discovered
	// appliance's announced addresses accepts a connection.
	ErrIPLookupFailed = errors.New("IP lookup failed")

	// ErrLocalAPIDisabled is returned when the appliance exists but its
	// local API is switched off, either announced as disabled or
	// answering 403.
	ErrLocalAPIDisabled = errors.New("local API disabled")

	// ErrUnknownBaseURL is returned by operations on a device that was
	// never loaded, so no base URL is known for it.
	ErrUnknownBaseURL = errors.New("unknown base URL")

	// ErrDeviceOffline is returned when the appliance cannot be reached
	// at all during loading.
	ErrDeviceOffline = errors.New("device offline")

	// ErrIdentifyUnsupported is returned when the appliance firmware
	// does not implement the identify endpoint.
	ErrIdentifyUnsupported = errors.New("identify not supported by this firmware")
)

// errInvalidProductType marks an /api response without a usable
// product_type field.
var errInvalidProductType = errors.New("invalid product type")
