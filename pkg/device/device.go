package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hwenergy/hwenergy-go/pkg/rest"
)

// Info is the identity block every appliance reports at GET /api.
type Info struct {
	// ProductName is the human readable product name.
	ProductName string `json:"product_name"`
	// ProductType is the product type token, see [Type].
	ProductType Type `json:"product_type"`
	// Serial is the appliance serial, stable across renames and
	// network moves.
	Serial string `json:"serial"`
	// FirmwareVersion is the installed firmware version.
	FirmwareVersion string `json:"firmware_version"`
	// APIVersion is the local API version the appliance serves,
	// currently "v1".
	APIVersion string `json:"api_version"`
}

// Device is a loaded appliance. The concrete type is one of the closed
// variant set; callers assert for the variant or for a capability
// interface. Devices marshal to and from the /api identity block, so a
// round trip through JSON is loss free.
type Device interface {
	// Info returns the identity block reported at load time.
	Info() Info
	// BaseURL returns the base URL stamped at load time, empty for a
	// device that was never loaded.
	BaseURL() string

	// stamp seals the variant set to this package.
	stamp(baseURL string, client *rest.Client)
}

// Identifiable appliances can draw attention to themselves, typically
// by blinking a status light.
type Identifiable interface {
	// Identify makes the appliance visibly identify itself. Firmware
	// without the endpoint fails with [ErrIdentifyUnsupported].
	Identify(ctx context.Context) error
}

// StateController appliances expose controllable state.
type StateController interface {
	// State fetches the current controllable state.
	State(ctx context.Context) (*State, error)
	// SetState applies the set fields of state and returns the state
	// as the appliance applied it.
	SetState(ctx context.Context, state State) (*State, error)
}

// TelegramProvider appliances expose the raw telegram of the meter they
// are connected to.
type TelegramProvider interface {
	// Telegram fetches the most recent raw DSMR telegram.
	Telegram(ctx context.Context) (string, error)
}

// SystemConfigurer appliances expose system configuration.
type SystemConfigurer interface {
	// SystemConfig fetches the current system configuration.
	SystemConfig(ctx context.Context) (*SystemConfig, error)
	// SetCloudEnabled switches cloud communication on or off and
	// returns the configuration as applied.
	SetCloudEnabled(ctx context.Context, enabled bool) (*SystemConfig, error)
}

// base carries what every variant shares: the decoded identity block
// and, once loaded, the base URL and the pipeline client.
type base struct {
	info Info

	baseURL string
	client  *rest.Client
}

// Info implements [Device].
func (b *base) Info() Info {
	return b.info
}

// BaseURL implements [Device].
func (b *base) BaseURL() string {
	return b.baseURL
}

// stamp records the base URL and client after a successful load. The
// base URL is written at most once; later calls are ignored.
func (b *base) stamp(baseURL string, client *rest.Client) {
	if b.baseURL != "" {
		return
	}
	b.baseURL = baseURL
	b.client = client
}

// MarshalJSON renders the identity block. Promoted to every variant.
func (b *base) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.info)
}

// UnmarshalJSON decodes the identity block. Promoted to every variant.
func (b *base) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &b.info)
}

// endpoint joins the versioned API root and an endpoint name.
func (b *base) endpoint(name string) string {
	version := b.info.APIVersion
	if version == "" {
		version = "v1"
	}
	return "/api/" + version + "/" + name
}

func (b *base) getJSON(ctx context.Context, name string, out any) error {
	if b.baseURL == "" {
		return ErrUnknownBaseURL
	}
	return b.client.DoJSON(ctx, rest.Request{
		BaseURL: b.baseURL,
		Method:  http.MethodGet,
		Path:    b.endpoint(name),
	}, out)
}

func (b *base) putJSON(ctx context.Context, name string, body, out any) error {
	if b.baseURL == "" {
		return ErrUnknownBaseURL
	}
	return b.client.DoJSON(ctx, rest.Request{
		BaseURL: b.baseURL,
		Method:  http.MethodPut,
		Path:    b.endpoint(name),
		Body:    body,
	}, out)
}

// identify backs [Identifiable] on the variants that support it.
func (b *base) identify(ctx context.Context) error {
	if b.baseURL == "" {
		return ErrUnknownBaseURL
	}
	err := b.client.DoVoid(ctx, rest.Request{
		BaseURL: b.baseURL,
		Method:  http.MethodPut,
		Path:    b.endpoint("identify"),
	})
	// Firmware predating the endpoint answers 404, some intermediate
	// versions 405. Both mean the same thing to the caller.
	if rest.IsKind(err, rest.KindNotFound) || rest.IsKind(err, rest.KindMethodNotAllowed) {
		return fmt.Errorf("%w: %v", ErrIdentifyUnsupported, err)
	}
	return err
}

// state and setState back [StateController] on the variants that
// support it.
func (b *base) state(ctx context.Context) (*State, error) {
	var state State
	if err := b.getJSON(ctx, "state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (b *base) setState(ctx context.Context, state State) (*State, error) {
	var applied State
	if err := b.putJSON(ctx, "state", state, &applied); err != nil {
		return nil, err
	}
	return &applied, nil
}

// telegram backs [TelegramProvider].
func (b *base) telegram(ctx context.Context) (string, error) {
	if b.baseURL == "" {
		return "", ErrUnknownBaseURL
	}
	raw, err := b.client.DoRaw(ctx, rest.Request{
		BaseURL: b.baseURL,
		Method:  http.MethodGet,
		Path:    b.endpoint("telegram"),
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// systemConfig and setSystemConfig back [SystemConfigurer].
func (b *base) systemConfig(ctx context.Context) (*SystemConfig, error) {
	var config SystemConfig
	if err := b.getJSON(ctx, "system", &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (b *base) setSystemConfig(ctx context.Context, config SystemConfig) (*SystemConfig, error) {
	var applied SystemConfig
	if err := b.putJSON(ctx, "system", config, &applied); err != nil {
		return nil, err
	}
	return &applied, nil
}
