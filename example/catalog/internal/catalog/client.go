package catalog

import (
	"github.com/halcyon-labs/dispatch-go/apiclient"

	"github.com/halcyon-labs/dispatch-go/example/catalog/internal/config"
)

// Client wraps the instrumented API client with catalog operations
type Client struct {
	api *apiclient.Client
}

// New creates a catalog client with tracing, metrics and request IDs enabled
func New() *Client {
	api := apiclient.New(
		apiclient.WithBaseURL(config.APIBaseURL),
		apiclient.WithServiceName(config.ServiceName),
		apiclient.WithConfig(apiclient.InteractiveConfig()),
		apiclient.WithRequestID(),
		apiclient.WithDefaultHeader("Accept", "application/json"),
	)
	return &Client{api: api}
}
