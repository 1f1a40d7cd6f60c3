package apiclient

import (
	"net/http"
	"time"
)

// =============================================================================
// Pool Stats
// =============================================================================

// PoolStats is a snapshot of the connection pool configuration the client
// dispatches through. Useful for verifying transport tuning at runtime.
type PoolStats struct {
	// MaxIdleConns is the maximum idle connections across all hosts.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// MaxConnsPerHost is the maximum total connections per host.
	// Zero means unlimited.
	MaxConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept before closing.
	IdleConnTimeout time.Duration

	// DisableKeepAlives indicates if HTTP keep-alives are disabled.
	DisableKeepAlives bool
}

// PoolStats returns the connection pool configuration of the underlying
// transport. It unwraps the instrumentation chain to reach the base
// http.Transport and returns the zero PoolStats when the client dispatches
// through a custom Doer instead.
func (c *Client) PoolStats() PoolStats {
	if c.httpClient == nil || c.httpClient.Transport == nil {
		return PoolStats{}
	}

	transport := unwrapTransport(c.httpClient.Transport)
	if transport == nil {
		return PoolStats{}
	}

	return PoolStats{
		MaxIdleConns:        transport.MaxIdleConns,
		MaxIdleConnsPerHost: transport.MaxIdleConnsPerHost,
		MaxConnsPerHost:     transport.MaxConnsPerHost,
		IdleConnTimeout:     transport.IdleConnTimeout,
		DisableKeepAlives:   transport.DisableKeepAlives,
	}
}

// =============================================================================
// Internal Utilities
// =============================================================================

// unwrapTransport traverses the transport chain to find the base
// http.Transport, following the Unwrap convention used by wrapping
// round trippers.
func unwrapTransport(rt http.RoundTripper) *http.Transport {
	for {
		switch t := rt.(type) {
		case *http.Transport:
			return t
		case interface{ Unwrap() http.RoundTripper }:
			rt = t.Unwrap()
		default:
			return nil
		}
	}
}
