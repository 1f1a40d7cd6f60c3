package apiclient

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// debugLogger is the package-level zerolog logger for debug output.
// Replace it per client with WithLogger.
var debugLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// logRequest logs an outgoing request when debug mode is on.
func (c *Client) logRequest(wire *http.Request, body []byte) {
	event := c.logger.Debug().
		Str("method", wire.Method).
		Str("url", wire.URL.String())
	if len(body) > 0 {
		event = event.Int("body_size", len(body)).Str("body", string(body))
	}
	if c.generateCurl {
		event = event.Str("curl", generateCurlCommand(wire, body))
	}
	event.Msg("dispatching request")
}

// logResponse logs an incoming response when debug mode is on.
func (c *Client) logResponse(wire *http.Request, resp *http.Response, body []byte) {
	c.logger.Debug().
		Str("method", wire.Method).
		Str("url", wire.URL.String()).
		Int("status", resp.StatusCode).
		Int("body_size", len(body)).
		Msg("received response")
}

// logDecodeFailure logs the raw body of an accepted response that failed to
// decode. The raw text is the diagnostic a caller needs to see why a schema
// and a server disagree, so it is logged regardless of debug mode.
func (c *Client) logDecodeFailure(raw *rawResponse, err error) {
	c.logger.Debug().
		Err(err).
		Int("status", raw.status).
		Str("raw_body", string(raw.body)).
		Msg("response body failed to decode")
}

// generateCurlCommand creates a cURL command equivalent for the given
// request, usable to reproduce a dispatch from the command line.
//
// Example output:
//
//	curl -X POST 'https://api.example.com/users' \
//	  -H 'Content-Type: application/json' \
//	  -d '{"name":"John"}'
func generateCurlCommand(req *http.Request, body []byte) string {
	var parts []string

	parts = append(parts, "curl")

	if req.Method != http.MethodGet {
		parts = append(parts, "-X", req.Method)
	}

	parts = append(parts, fmt.Sprintf("'%s'", req.URL.String()))

	// Headers (sorted for consistent output)
	headerKeys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		headerKeys = append(headerKeys, k)
	}
	sort.Strings(headerKeys)

	for _, k := range headerKeys {
		for _, v := range req.Header[k] {
			parts = append(parts, "-H", fmt.Sprintf("'%s: %s'", k, v))
		}
	}

	if len(body) > 0 {
		bodyStr := strings.ReplaceAll(string(body), "'", "'\\''")
		parts = append(parts, "-d", fmt.Sprintf("'%s'", bodyStr))
	}

	return strings.Join(parts, " ")
}
