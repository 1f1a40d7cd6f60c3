package apiclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/halcyon-labs/dispatch-go/apiclient"
)

// =============================================================================
// Config - HTTP Transport Configuration
// =============================================================================

// Config holds the HTTP transport configuration parameters. Use
// DefaultConfig() to get a properly initialized configuration, then modify
// specific fields as needed:
//
//	cfg := apiclient.DefaultConfig()
//	cfg.Timeout = 10 * time.Second
//
//	client := apiclient.New(
//	    apiclient.WithConfig(cfg),
//	    apiclient.WithBaseURL("https://api.example.com"),
//	)
type Config struct {
	// Timeout limits the entire request lifecycle: connection, TLS
	// handshake, sending the request, and reading the response body.
	// Zero means no timeout.
	//
	// Default: 60s
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle (keep-alive) connections
	// across all hosts combined.
	//
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections kept per host.
	// Often the most important pool setting when the client talks to a
	// single API host.
	//
	// Default: 20
	MaxIdleConnsPerHost int

	// MaxConnsPerHost limits total connections (idle + active) per host.
	// Zero means unlimited.
	//
	// Default: 100
	MaxConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays pooled before
	// being closed.
	//
	// Default: 90s
	IdleConnTimeout time.Duration

	// TLSHandshakeTimeout is the maximum time to wait for a TLS handshake.
	//
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// ExpectContinueTimeout is how long to wait for a server's
	// "100 Continue" response when the "Expect: 100-continue" header is
	// used for large request bodies.
	//
	// Default: 1s
	ExpectContinueTimeout time.Duration

	// ResponseHeaderTimeout is the time to wait for response headers after
	// the request is fully written. Zero disables it and relies on the
	// overall Timeout.
	//
	// Default: 0
	ResponseHeaderTimeout time.Duration

	// DialTimeout is the maximum time to establish a TCP connection.
	//
	// Default: 5s
	DialTimeout time.Duration

	// KeepAlive is the TCP keep-alive probe interval.
	//
	// Default: 30s
	KeepAlive time.Duration

	// DisableKeepAlives forces a new connection for each request. Almost
	// never what you want in production.
	//
	// Default: false
	DisableKeepAlives bool

	// DisableCompression disables the "Accept-Encoding: gzip" request
	// header and the transparent decompression that goes with it.
	//
	// Default: false (compression enabled, JSON bodies shrink well)
	DisableCompression bool

	// ForceHTTP2 forces HTTP/2 (requires HTTPS).
	//
	// Default: false (negotiated via ALPN)
	ForceHTTP2 bool
}

// DefaultConfig returns a balanced configuration for typical API dispatch:
// a 60 second overall timeout and a moderate connection pool.
func DefaultConfig() Config {
	return Config{
		// Overall timeout for a single logical request
		Timeout: 60 * time.Second,

		// Connection pool tuning (balanced)
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,

		// TLS and protocol timeouts
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 0,

		// TCP dial settings
		DialTimeout: 5 * time.Second,
		KeepAlive:   30 * time.Second,

		DisableKeepAlives:  false,
		DisableCompression: false,
		ForceHTTP2:         false,
	}
}

// InteractiveConfig returns a configuration tuned for user-facing calls
// where failing fast beats waiting out a slow backend.
//
// Key differences from DefaultConfig:
//   - 10 second overall timeout
//   - 3 second response header timeout
//   - quick dial for fast failover
func InteractiveConfig() Config {
	return Config{
		Timeout: 10 * time.Second,

		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 25,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     60 * time.Second,

		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 500 * time.Millisecond,
		ResponseHeaderTimeout: 3 * time.Second,

		DialTimeout: 2 * time.Second,
		KeepAlive:   15 * time.Second,

		DisableKeepAlives:  false,
		DisableCompression: false,
		ForceHTTP2:         true,
	}
}

// =============================================================================
// Internal Configuration
// =============================================================================

// internalConfig holds all configuration: transport, dispatch collaborators,
// and OTel settings.
type internalConfig struct {
	// HTTP transport configuration
	httpConfig Config

	// === Dispatch Collaborators ===

	// BaseURL is prefixed to every descriptor endpoint.
	BaseURL string

	// DefaultHeaders are attached to every request. Descriptor headers
	// override them on conflict.
	DefaultHeaders http.Header

	// BodyBuilder serializes request parameters. Default: JSONBodyBuilder.
	BodyBuilder BodyBuilder

	// Decoder decodes typed response bodies. Default: JSONDecoder.
	Decoder Decoder

	// Scheduler delivers completion callbacks. Default: SerialScheduler.
	Scheduler Scheduler

	// Doer overrides the platform HTTP client entirely. Nil means the
	// client builds its own *http.Client from httpConfig.
	Doer Doer

	// === Service Identification ===

	// ServiceName identifies this client in traces and metrics.
	// Added as "http.client.name" attribute.
	ServiceName string

	// === Debug Logging ===

	// Logger receives request/response debug lines and decode-failure
	// diagnostics.
	Logger zerolog.Logger

	// Debug enables request/response logging.
	Debug bool

	// GenerateCurl additionally logs a cURL command reproducing each
	// request. Implies nothing unless Debug is on.
	GenerateCurl bool

	// RequestID stamps an X-Request-ID header on outgoing requests that
	// do not already carry one.
	RequestID bool

	// === OpenTelemetry Configuration ===

	// TracerProvider is the tracer provider to use.
	// If not set, uses the global provider via otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If not set, uses the global provider via otel.GetMeterProvider().
	MeterProvider metric.MeterProvider

	// Tracer is the tracer instance created from TracerProvider.
	Tracer trace.Tracer

	// Meter is the meter instance created from MeterProvider.
	Meter metric.Meter

	// Metrics holds the metric instruments.
	Metrics *metrics

	// Propagators configures the context propagators.
	// Default: TraceContext + Baggage (W3C standard)
	Propagators propagation.TextMapPropagator

	// === Advanced Settings ===

	// TLSConfig specifies the TLS configuration. Nil uses the default.
	TLSConfig *tls.Config

	// ProxyURL specifies a proxy URL for requests.
	ProxyURL *url.URL

	// ProxyFromEnvironment uses HTTP_PROXY, HTTPS_PROXY and NO_PROXY
	// environment variables. Default: true
	ProxyFromEnvironment bool
}

// newConfig creates a new internal config with defaults and applies options.
func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		httpConfig:     DefaultConfig(),
		TracerProvider: otel.GetTracerProvider(),
		MeterProvider:  otel.GetMeterProvider(),

		// Defaults
		DefaultHeaders:       http.Header{},
		BodyBuilder:          JSONBodyBuilder{},
		Decoder:              JSONDecoder{},
		Scheduler:            NewSerialScheduler(),
		Logger:               debugLogger,
		ProxyFromEnvironment: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	// Initialize tracer and meter after options are applied
	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	// Initialize metrics (nil instruments are skipped at record time)
	cfg.Metrics, _ = newMetrics(cfg.Meter)

	return cfg
}

// buildTransport creates an http.Transport from the configuration.
func (cfg *internalConfig) buildTransport() *http.Transport {
	hc := cfg.httpConfig

	dialer := &net.Dialer{
		Timeout:   hc.DialTimeout,
		KeepAlive: hc.KeepAlive,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          hc.MaxIdleConns,
		MaxIdleConnsPerHost:   hc.MaxIdleConnsPerHost,
		MaxConnsPerHost:       hc.MaxConnsPerHost,
		IdleConnTimeout:       hc.IdleConnTimeout,
		TLSHandshakeTimeout:   hc.TLSHandshakeTimeout,
		ResponseHeaderTimeout: hc.ResponseHeaderTimeout,
		ExpectContinueTimeout: hc.ExpectContinueTimeout,
		DisableKeepAlives:     hc.DisableKeepAlives,
		DisableCompression:    hc.DisableCompression,
		TLSClientConfig:       cfg.TLSConfig,
		ForceAttemptHTTP2:     hc.ForceHTTP2,
	}

	// Configure proxy
	if cfg.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(cfg.ProxyURL)
	} else if cfg.ProxyFromEnvironment {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return transport
}

// baseAttributes returns common attributes for all spans and metrics.
func (cfg *internalConfig) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("http.client.name", cfg.ServiceName))
	}
	return attrs
}

// =============================================================================
// Options - Functional Options for Client Configuration
// =============================================================================

// Option configures the client.
type Option func(*internalConfig)

// WithConfig sets the HTTP transport configuration. Use DefaultConfig() or
// InteractiveConfig() as a starting point, then customize as needed.
//
// Example:
//
//	cfg := apiclient.DefaultConfig()
//	cfg.MaxIdleConnsPerHost = 50
//
//	client := apiclient.New(apiclient.WithConfig(cfg))
func WithConfig(c Config) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig = c
	}
}

// WithTimeout overrides only the overall request timeout, keeping the rest
// of the transport configuration as configured.
func WithTimeout(d time.Duration) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig.Timeout = d
	}
}

// WithBaseURL sets the URL prefix for every descriptor endpoint. Endpoints
// are joined to it with exactly one slash:
//
//	client := apiclient.New(apiclient.WithBaseURL("https://api.example.com/v2"))
//	// Request{Endpoint: "/users"} dispatches to https://api.example.com/v2/users
//
// Without a base URL, descriptor endpoints must be absolute URLs themselves.
func WithBaseURL(baseURL string) Option {
	return func(cfg *internalConfig) {
		cfg.BaseURL = baseURL
	}
}

// WithServiceName sets an identifier for this client in traces and metrics.
// The value is added as the "http.client.name" attribute, making it easy to
// tell clients apart in observability tools.
//
// Use lowercase with hyphens (e.g., "billing-client", "user-api").
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.ServiceName = name
	}
}

// WithBodyBuilder replaces the default JSON body builder. The builder is
// consulted for every dispatch; returning (nil, nil) sends no body.
//
// Example - form-encoded bodies:
//
//	client := apiclient.New(
//	    apiclient.WithBodyBuilder(apiclient.BodyBuilderFunc(func(req apiclient.Request) ([]byte, error) {
//	        return encodeForm(req.Params)
//	    })),
//	)
func WithBodyBuilder(b BodyBuilder) Option {
	return func(cfg *internalConfig) {
		cfg.BodyBuilder = b
	}
}

// WithDecoder replaces the default JSON decoder used by the typed dispatch
// path. The structural Object and Payload paths always parse JSON.
func WithDecoder(d Decoder) Option {
	return func(cfg *internalConfig) {
		cfg.Decoder = d
	}
}

// WithScheduler replaces the default serial completion scheduler.
//
// Example - fan completions out without serialization:
//
//	client := apiclient.New(apiclient.WithScheduler(apiclient.ConcurrentScheduler{}))
func WithScheduler(s Scheduler) Option {
	return func(cfg *internalConfig) {
		cfg.Scheduler = s
	}
}

// WithDefaultHeader adds a header attached to every request. Descriptor
// headers override it on conflict. Call multiple times for multiple headers.
//
// Example:
//
//	client := apiclient.New(
//	    apiclient.WithDefaultHeader("Authorization", "Bearer "+token),
//	    apiclient.WithDefaultHeader("Accept", "application/json"),
//	)
func WithDefaultHeader(key, value string) Option {
	return func(cfg *internalConfig) {
		cfg.DefaultHeaders.Set(key, value)
	}
}

// WithDefaultHeaders merges a header set into the client's default headers.
func WithDefaultHeaders(h http.Header) Option {
	return func(cfg *internalConfig) {
		for key, values := range h {
			for _, v := range values {
				cfg.DefaultHeaders.Add(key, v)
			}
		}
	}
}

// WithRequestID stamps a fresh UUID into the X-Request-ID header of every
// outgoing request that does not already carry one.
func WithRequestID() Option {
	return func(cfg *internalConfig) {
		cfg.RequestID = true
	}
}

// WithDebug enables debug logging of outgoing requests and incoming
// responses.
func WithDebug(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.Debug = enabled
	}
}

// WithCurlLogging additionally logs a cURL command reproducing each request.
// Only effective together with WithDebug(true). Headers are logged as sent,
// bearer tokens included, so keep this out of production.
func WithCurlLogging() Option {
	return func(cfg *internalConfig) {
		cfg.GenerateCurl = true
	}
}

// WithLogger sets the logger used for debug output and decode-failure
// diagnostics. Default: a zerolog logger writing to stdout.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.Logger = logger
	}
}

// WithDoer replaces the platform HTTP client entirely. The Doer is used as
// given: transport configuration, timeout, and instrumentation wrapping are
// all skipped. Intended for tests and for callers that manage their own
// *http.Client.
func WithDoer(d Doer) Option {
	return func(cfg *internalConfig) {
		cfg.Doer = d
	}
}

// WithTracerProvider sets a custom OpenTelemetry TracerProvider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom OpenTelemetry MeterProvider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.MeterProvider = mp
	}
}

// WithPropagators sets custom context propagators for trace context
// injection. By default, W3C TraceContext and Baggage propagators are used.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *internalConfig) {
		cfg.Propagators = p
	}
}

// WithTLSConfig sets a custom TLS configuration, for client certificates
// (mTLS) or specific verification requirements.
func WithTLSConfig(tlsCfg *tls.Config) Option {
	return func(cfg *internalConfig) {
		cfg.TLSConfig = tlsCfg
	}
}

// WithProxyURL sets a specific proxy URL for all requests. When set, this
// takes precedence over environment variables.
func WithProxyURL(proxyURL *url.URL) Option {
	return func(cfg *internalConfig) {
		cfg.ProxyURL = proxyURL
		cfg.ProxyFromEnvironment = false
	}
}

// WithProxyFromEnvironment enables or disables reading proxy settings from
// environment variables (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
//
// Default: true
func WithProxyFromEnvironment(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.ProxyFromEnvironment = enabled
	}
}
