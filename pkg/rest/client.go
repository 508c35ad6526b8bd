package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hwenergy/hwenergy-go/pkg/log"
)

// Config configures a request Client.
type Config struct {
	// HTTPClient is the underlying HTTP client. Defaults to a fresh
	// http.Client with transport defaults and no client-level timeout;
	// per-call deadlines come from the context.
	HTTPClient *http.Client

	// Logger receives diagnostic events. Defaults to a NoopLogger.
	Logger log.Logger
}

// Client issues single-attempt HTTP+JSON exchanges against appliance base
// URLs. One Client can serve any number of devices and is safe for
// concurrent use. The pipeline never retries.
type Client struct {
	httpClient *http.Client
	logger     log.Logger
	id         string

	// seq numbers every exchange for correlated diagnostics.
	seq atomic.Uint64
}

// NewClient creates a request client. The zero Config is valid.
func NewClient(config Config) *Client {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Logger == nil {
		config.Logger = log.NoopLogger{}
	}
	return &Client{
		httpClient: config.HTTPClient,
		logger:     config.Logger,
		id:         uuid.NewString(),
	}
}

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// Default returns the lazily-created process-wide client. It carries default
// configuration and a NoopLogger; construct a Client of your own when you
// need diagnostics or isolation.
func Default() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(Config{})
	})
	return defaultClient
}

// ID returns the client instance identifier stamped on diagnostic events.
func (c *Client) ID() string {
	return c.id
}

// Request describes one exchange.
type Request struct {
	// BaseURL is the absolute appliance base URL, e.g. "http://192.168.1.5"
	// or "http://[fe80::1%en0]". Empty means the device has not been
	// resolved yet and the request fails with KindNotReady.
	BaseURL string

	// Method is the HTTP method.
	Method string

	// Path is the path below BaseURL, e.g. "/api/v1/data".
	Path string

	// Body is JSON-encoded as the request body when non-nil.
	Body any

	// FallbackKind is assigned when a transport failure has no specific
	// classification. Transport classification always takes priority.
	// Zero means KindUnknown.
	FallbackKind Kind
}

// DoVoid issues the request and discards any response payload.
func (c *Client) DoVoid(ctx context.Context, req Request) error {
	return c.do(ctx, req, nil, false)
}

// DoRaw issues the request and returns the response payload unchanged.
func (c *Client) DoRaw(ctx context.Context, req Request) ([]byte, error) {
	var raw []byte
	err := c.do(ctx, req, func(data []byte) error {
		raw = append([]byte(nil), data...)
		return nil
	}, true)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// DoObject issues the request and decodes the response as a loose JSON
// object.
func (c *Client) DoObject(ctx context.Context, req Request) (map[string]any, error) {
	var obj map[string]any
	err := c.do(ctx, req, func(data []byte) error {
		return json.Unmarshal(data, &obj)
	}, true)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// DoJSON issues the request and decodes the response into out, which must
// be a pointer.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	return c.do(ctx, req, func(data []byte) error {
		return json.Unmarshal(data, out)
	}, true)
}

// do runs the exchange pipeline: number, build, encode, send, classify,
// decode. Every call emits a start event and exactly one terminal event.
// needBody requires a non-empty success payload; sink receives it.
func (c *Client) do(ctx context.Context, req Request, sink func([]byte) error, needBody bool) error {
	seq := c.seq.Add(1)
	started := time.Now()

	fullURL, urlErr := buildURL(req.BaseURL, req.Path)
	displayURL := fullURL
	if displayURL == "" {
		displayURL = req.BaseURL + req.Path
	}

	var payload []byte
	var encErr error
	if req.Body != nil {
		payload, encErr = json.Marshal(req.Body)
	}

	c.logger.Log(log.Event{
		Timestamp: started,
		ClientID:  c.id,
		Direction: log.DirectionOut,
		Source:    log.SourceREST,
		Category:  log.CategoryExchange,
		Exchange: &log.ExchangeEvent{
			Seq:      seq,
			Method:   req.Method,
			URL:      displayURL,
			BodySize: len(payload),
		},
	})

	if req.BaseURL == "" {
		return c.fail(req, &Error{Kind: KindNotReady, Seq: seq})
	}
	if urlErr != nil {
		return c.fail(req, &Error{Kind: KindInvalidURL, Seq: seq, Err: urlErr})
	}
	if encErr != nil {
		return c.fail(req, &Error{Kind: KindEncoding, Seq: seq, Err: encErr})
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return c.fail(req, &Error{Kind: KindInvalidURL, Seq: seq, Err: err})
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.fail(req, c.transportError(req, seq, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(req, c.transportError(req, seq, err))
	}

	if kind, ok := KindForStatus(resp.StatusCode); ok {
		return c.fail(req, &Error{Kind: kind, Status: resp.StatusCode, Body: data, Seq: seq})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(req, &Error{Kind: KindUnexpectedResponse, Status: resp.StatusCode, Body: data, Seq: seq})
	}
	if needBody && len(data) == 0 {
		return c.fail(req, &Error{Kind: KindUnexpectedResponse, Status: resp.StatusCode, Seq: seq})
	}
	if sink != nil && len(data) > 0 {
		if err := sink(data); err != nil {
			return c.fail(req, &Error{Kind: KindDecoding, Seq: seq, Err: err})
		}
	}

	duration := time.Since(started)
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		ClientID:  c.id,
		Direction: log.DirectionIn,
		Source:    log.SourceREST,
		Category:  log.CategoryExchange,
		Exchange: &log.ExchangeEvent{
			Seq:      seq,
			Method:   req.Method,
			URL:      fullURL,
			Status:   resp.StatusCode,
			BodySize: len(data),
			Duration: &duration,
		},
	})
	return nil
}

// transportError classifies a network failure, falling back to the
// request's FallbackKind only when no specific mapping applies.
func (c *Client) transportError(req Request, seq uint64, err error) *Error {
	kind, ok := classifyTransport(err)
	if !ok && req.FallbackKind != 0 {
		kind = req.FallbackKind
	}
	return &Error{Kind: kind, Seq: seq, Err: err}
}

// fail emits the terminal error event for an exchange and returns the error.
func (c *Client) fail(req Request, failure *Error) error {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		ClientID:  c.id,
		Direction: log.DirectionIn,
		Source:    log.SourceREST,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceREST,
			Message: failure.Error(),
			Kind:    failure.Kind.String(),
			Context: req.Method + " " + req.Path,
		},
	})
	return failure
}

// buildURL joins an appliance base URL and a request path.
func buildURL(baseURL, path string) (string, error) {
	if baseURL == "" {
		return "", nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &url.Error{Op: "parse", URL: baseURL, Err: errUnsupportedScheme}
	}
	if parsed.Host == "" {
		return "", &url.Error{Op: "parse", URL: baseURL, Err: errMissingHost}
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	return parsed.String(), nil
}
