package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hwenergy/hwenergy-go/pkg/discovery"
	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

// LoadAddress loads the appliance answering at a bare IP address or
// host name, with an optional port. A nil client uses [rest.Default].
// Malformed addresses fail with [ErrInvalidAddress] before any network
// traffic.
func LoadAddress(ctx context.Context, client *rest.Client, address string) (Device, error) {
	baseURL, err := baseURLForAddress(address)
	if err != nil {
		return nil, err
	}
	return loadBaseURL(ctx, client, baseURL)
}

// LoadDiscovered loads the appliance behind a collected announcement. A
// device announcing its local API as disabled fails with
// [ErrLocalAPIDisabled] before any network traffic; an announcement
// whose addresses all refuse a connection fails with
// [ErrIPLookupFailed].
func LoadDiscovered(ctx context.Context, client *rest.Client, discovered *discovery.DiscoveredDevice) (Device, error) {
	if !discovered.APIEnabled {
		return nil, ErrLocalAPIDisabled
	}
	baseURL, err := discovered.ResolveBaseURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIPLookupFailed, err)
	}
	return loadBaseURL(ctx, client, baseURL)
}

// baseURLForAddress validates an address and turns it into a base URL.
// IPv6 literals are recognized by their double colon and bracketed.
func baseURLForAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "", ErrInvalidAddress
	}
	candidate := "http://" + trimmed
	if strings.Contains(trimmed, "::") {
		candidate = "http://[" + trimmed + "]"
	}
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" || parsed.Path != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return candidate, nil
}

// loadBaseURL probes GET /api, picks the variant for the reported
// product type, decodes the identity block into it and stamps the base
// URL. A 403 answer means the local API is disabled; an unreachable
// appliance is offline. Everything else propagates as the pipeline
// reported it.
func loadBaseURL(ctx context.Context, client *rest.Client, baseURL string) (Device, error) {
	if client == nil {
		client = rest.Default()
	}

	raw, err := client.DoRaw(ctx, rest.Request{
		BaseURL: baseURL,
		Method:  http.MethodGet,
		Path:    "/api",
	})
	if err != nil {
		switch {
		case rest.IsKind(err, rest.KindForbidden):
			return nil, fmt.Errorf("%w: %v", ErrLocalAPIDisabled, err)
		case rest.IsKind(err, rest.KindUnreachable):
			return nil, fmt.Errorf("%w: %v", ErrDeviceOffline, err)
		}
		return nil, err
	}

	var probe struct {
		ProductType string `json:"product_type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &rest.Error{Kind: rest.KindDecoding, Err: err}
	}
	if probe.ProductType == "" {
		return nil, &rest.Error{Kind: rest.KindUnexpectedResponse, Err: errInvalidProductType}
	}

	loaded := newDeviceFor(ResolveType(probe.ProductType))
	if err := json.Unmarshal(raw, loaded); err != nil {
		return nil, &rest.Error{Kind: rest.KindDecoding, Err: err}
	}
	loaded.stamp(baseURL, client)
	return loaded, nil
}
