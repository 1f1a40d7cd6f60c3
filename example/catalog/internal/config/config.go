package config

const (
	// Catalog API configuration
	APIPort    = ":8089"
	APIBaseURL = "http://localhost:8089"

	// Server configuration
	MetricsPort = ":2112"

	// OpenTelemetry configuration
	OTLPEndpoint   = "localhost:4317"
	ServiceName    = "dispatch-catalog-example"
	ServiceVersion = "0.1.0"

	// Operation intervals
	OperationInterval = 5 // seconds
)
