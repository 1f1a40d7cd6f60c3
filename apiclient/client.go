package apiclient

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Doer abstracts the platform HTTP client. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client dispatches request descriptors: it builds the wire request, sends
// it through an instrumented transport, validates and decodes the response,
// and reports exactly one outcome per call.
//
// Create a Client with New():
//
//	client := apiclient.New(
//	    apiclient.WithBaseURL("https://api.example.com"),
//	    apiclient.WithServiceName("billing-client"),
//	)
//
//	invoice, _, err := apiclient.Decode[Invoice](ctx, client, apiclient.Request{
//	    Endpoint: "/invoices/" + id,
//	})
type Client struct {
	// doer performs the wire exchange. Usually the instrumented
	// *http.Client below, unless WithDoer replaced it.
	doer Doer

	// httpClient is the underlying HTTP client with instrumented transport.
	// Nil when WithDoer supplied a custom Doer.
	httpClient *http.Client

	// config holds all client configuration.
	config *internalConfig

	// baseURL is prefixed to every descriptor endpoint.
	baseURL string

	// defaultHeaders are applied to all requests.
	defaultHeaders http.Header

	// bodyBuilder serializes descriptor parameters into body bytes.
	bodyBuilder BodyBuilder

	// decoder decodes accepted response bodies on the typed path.
	decoder Decoder

	// scheduler delivers asynchronous completion callbacks.
	scheduler Scheduler

	// logger receives debug lines and decode diagnostics.
	logger zerolog.Logger

	// debug enables request/response logging.
	debug bool

	// generateCurl adds a cURL reproduction line to request debug logs.
	generateCurl bool

	// requestID stamps X-Request-ID on outgoing requests.
	requestID bool
}

// New creates a Client with production-ready defaults and OpenTelemetry
// instrumentation.
//
// The client includes:
//   - Connection pooling and a 60 second overall timeout
//   - OpenTelemetry tracing and metrics on every dispatch
//   - JSON body building and decoding
//   - Serial completion scheduling for the asynchronous operations
//
// Example:
//
//	client := apiclient.New(
//	    apiclient.WithBaseURL("https://api.example.com"),
//	    apiclient.WithServiceName("catalog-client"),
//	)
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)

	if cfg.Doer != nil {
		return newClient(cfg.Doer, nil, cfg)
	}

	httpClient := &http.Client{
		Transport: newOtelTransport(cfg.buildTransport(), cfg),
		Timeout:   cfg.httpConfig.Timeout,
	}

	return newClient(httpClient, httpClient, cfg)
}

// NewWithTransport creates a Client on top of a custom base transport, with
// OpenTelemetry instrumentation wrapped around it. Use this to inject a
// MockTransport in tests or a tuned *http.Transport in production.
//
// Example:
//
//	mock := apiclient.NewMockTransport()
//	mock.StubResponse(200, `{"id": 1}`)
//	client := apiclient.NewWithTransport(mock)
func NewWithTransport(base http.RoundTripper, opts ...Option) *Client {
	cfg := newConfig(opts...)

	httpClient := &http.Client{
		Transport: newOtelTransport(base, cfg),
		Timeout:   cfg.httpConfig.Timeout,
	}

	return newClient(httpClient, httpClient, cfg)
}

// NewTransport creates an instrumented http.RoundTripper for use with a
// caller-owned http.Client.
func NewTransport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	cfg := newConfig(opts...)
	return newOtelTransport(base, cfg)
}

func newClient(doer Doer, httpClient *http.Client, cfg *internalConfig) *Client {
	return &Client{
		doer:           doer,
		httpClient:     httpClient,
		config:         cfg,
		baseURL:        cfg.BaseURL,
		defaultHeaders: cfg.DefaultHeaders,
		bodyBuilder:    cfg.BodyBuilder,
		decoder:        cfg.Decoder,
		scheduler:      cfg.Scheduler,
		logger:         cfg.Logger,
		debug:          cfg.Debug,
		generateCurl:   cfg.GenerateCurl,
		requestID:      cfg.RequestID,
	}
}

// HTTP returns the underlying *http.Client, or nil when the client runs on
// a custom Doer. Useful for handing to libraries that expect *http.Client.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// BaseURL returns the configured URL prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}
