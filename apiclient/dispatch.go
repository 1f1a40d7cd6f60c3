package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader is the header used to correlate requests across services.
const RequestIDHeader = "X-Request-ID"

// CallOption adjusts a single dispatch without touching client state.
type CallOption func(*callConfig)

type callConfig struct {
	decoder Decoder
}

// WithCallDecoder overrides the client's decoder for one call.
func WithCallDecoder(d Decoder) CallOption {
	return func(cc *callConfig) {
		cc.decoder = d
	}
}

func (c *Client) newCallConfig(opts ...CallOption) callConfig {
	cc := callConfig{decoder: c.decoder}
	for _, opt := range opts {
		opt(&cc)
	}
	return cc
}

// decodableStatus is the accepted status set for the typed and object
// dispatch paths.
func decodableStatus(code int) bool {
	switch code {
	case http.StatusOK,
		http.StatusCreated,
		http.StatusAccepted,
		http.StatusNonAuthoritativeInfo,
		http.StatusNoContent:
		return true
	}
	return false
}

// payloadStatus is the accepted status set for the structural payload path.
func payloadStatus(code int) bool {
	return code == http.StatusOK
}

// rawResponse is an accepted, fully read response awaiting decoding.
type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

// =============================================================================
// Typed Dispatch
// =============================================================================

// Decode dispatches the described request and decodes the response body
// into a value of type T. Success requires a status in the 200..204 range
// and a non-empty body.
//
// Decode is a package-level function because Go methods cannot introduce
// type parameters.
//
// Example:
//
//	user, headers, err := apiclient.Decode[User](ctx, client, apiclient.Request{
//	    Endpoint: "/users/42",
//	})
func Decode[T any](ctx context.Context, c *Client, desc Descriptor, opts ...CallOption) (T, http.Header, error) {
	var zero T
	cc := c.newCallConfig(opts...)

	raw, err := c.exchange(ctx, desc, decodableStatus)
	if err != nil {
		return zero, nil, err
	}

	var out T
	if err := cc.decoder.Decode(raw.body, &out); err != nil {
		c.logDecodeFailure(raw, err)
		return zero, nil, err
	}
	return out, raw.header, nil
}

// DecodeAsync dispatches the described request on its own goroutine and
// delivers the outcome through complete, scheduled on the client's
// Scheduler. The callback fires exactly once per call, for failures
// detected before the network exchange included.
func DecodeAsync[T any](ctx context.Context, c *Client, desc Descriptor, complete func(Result[T]), opts ...CallOption) {
	go func() {
		value, header, err := Decode[T](ctx, c, desc, opts...)
		c.scheduler.Schedule(func() {
			complete(Result[T]{Value: value, Headers: header, Err: err})
		})
	}()
}

// =============================================================================
// Generic Object Dispatch
// =============================================================================

// Object dispatches the described request and parses the response body as a
// generic JSON object. Success requires a status in the 200..204 range, a
// non-empty body, and a top-level JSON object; any other body shape fails
// with KindNotParseable carrying the raw body text.
//
// The parse is always JSON, independent of the client's Decoder.
func (c *Client) Object(ctx context.Context, desc Descriptor) (map[string]any, http.Header, error) {
	raw, err := c.exchange(ctx, desc, decodableStatus)
	if err != nil {
		return nil, nil, err
	}

	var out map[string]any
	if err := (JSONDecoder{}).Decode(raw.body, &out); err != nil || out == nil {
		// out stays nil for the JSON literal "null"; a null body is not
		// an object either.
		c.logDecodeFailure(raw, err)
		return nil, nil, NewError(KindNotParseable, string(raw.body))
	}
	return out, raw.header, nil
}

// ObjectAsync is the asynchronous form of Object. See DecodeAsync for the
// delivery guarantees.
func (c *Client) ObjectAsync(ctx context.Context, desc Descriptor, complete func(Result[map[string]any])) {
	go func() {
		value, header, err := c.Object(ctx, desc)
		c.scheduler.Schedule(func() {
			complete(Result[map[string]any]{Value: value, Headers: header, Err: err})
		})
	}()
}

// =============================================================================
// Structural Payload Dispatch
// =============================================================================

// Payload dispatches the described request and validates the response body
// against the closed payload shape set: a top-level JSON object or array.
// Success requires status 200 exactly and a non-empty body; scalars, null,
// and invalid JSON fail with KindNotParseable carrying the raw body text.
func (c *Client) Payload(ctx context.Context, desc Descriptor) (Payload, http.Header, error) {
	raw, err := c.exchange(ctx, desc, payloadStatus)
	if err != nil {
		return Payload{}, nil, err
	}

	p, err := parsePayload(raw.body)
	if err != nil {
		c.logDecodeFailure(raw, err)
		return Payload{}, nil, NewError(KindNotParseable, string(raw.body))
	}
	return p, raw.header, nil
}

// PayloadAsync is the asynchronous form of Payload. See DecodeAsync for the
// delivery guarantees.
func (c *Client) PayloadAsync(ctx context.Context, desc Descriptor, complete func(Result[Payload])) {
	go func() {
		value, header, err := c.Payload(ctx, desc)
		c.scheduler.Schedule(func() {
			complete(Result[Payload]{Value: value, Headers: header, Err: err})
		})
	}()
}

// =============================================================================
// Exchange Pipeline
// =============================================================================

// exchange runs the shared part of every dispatch: build the target URL and
// body, send the request, read the response, and validate it against the
// accepted status set. The empty-body check runs before status validation,
// so an empty error response reports KindNoData rather than
// KindWrongStatusCode.
func (c *Client) exchange(ctx context.Context, desc Descriptor, accepted func(int) bool) (*rawResponse, error) {
	req := desc.Describe()

	target, err := c.buildURL(req.Endpoint)
	if err != nil {
		return nil, err
	}

	body, err := c.bodyBuilder.Build(req)
	if err != nil {
		return nil, err
	}

	wire, err := c.newWireRequest(ctx, req, target, body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logRequest(wire, body)
	}

	resp, err := c.doer.Do(wire)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		// net/http never does this; a custom Doer might.
		return nil, NewError(KindNotHTTPResponse, "client returned neither response nor error")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logResponse(wire, resp, data)
	}

	if len(data) == 0 {
		return nil, NewError(KindNoData, "")
	}

	if !accepted(resp.StatusCode) {
		return nil, NewError(KindWrongStatusCode, describeExchange(wire, resp, len(data)))
	}

	return &rawResponse{
		status: resp.StatusCode,
		header: resp.Header,
		body:   data,
	}, nil
}

// buildURL joins the client base URL and the descriptor endpoint and
// validates the result. A string that does not form an absolute URL fails
// with KindInvalidURL; it is always reported, never silently dropped.
func (c *Client) buildURL(endpoint string) (string, error) {
	full := endpoint
	if c.baseURL != "" {
		full = strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
	}

	u, err := url.Parse(full)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", NewError(KindInvalidURL,
			fmt.Sprintf("base %q and endpoint %q do not form an absolute URL", c.baseURL, endpoint))
	}
	return u.String(), nil
}

// newWireRequest assembles the *http.Request: cache-bypass policy first,
// then client default headers, then descriptor headers (which win), then
// the derived Content-Type and optional request ID.
func (c *Client) newWireRequest(ctx context.Context, req Request, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	wire, err := http.NewRequestWithContext(ctx, req.method(), target, reader)
	if err != nil {
		return nil, err
	}

	// Never serve from or populate an HTTP cache.
	wire.Header.Set("Cache-Control", "no-cache")
	wire.Header.Set("Pragma", "no-cache")

	for key, values := range c.defaultHeaders {
		for _, v := range values {
			wire.Header.Add(key, v)
		}
	}
	for key, value := range req.Headers {
		wire.Header.Set(key, value)
	}

	if len(body) > 0 && wire.Header.Get("Content-Type") == "" {
		wire.Header.Set("Content-Type", "application/json")
	}

	if c.requestID && wire.Header.Get(RequestIDHeader) == "" {
		wire.Header.Set(RequestIDHeader, uuid.New().String())
	}

	return wire, nil
}

// describeExchange renders a one-line debug description of a finished
// exchange, status code included. Used as the KindWrongStatusCode message.
func describeExchange(wire *http.Request, resp *http.Response, bodyLen int) string {
	return fmt.Sprintf("%s %s responded %d %s (%d byte body)",
		wire.Method, wire.URL, resp.StatusCode, http.StatusText(resp.StatusCode), bodyLen)
}
