package apiclient

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// BodyBuilder turns a request description into serialized body bytes.
//
// Returning (nil, nil) means the request carries no body. A non-nil error
// aborts the dispatch before anything touches the network and is reported to
// the caller verbatim.
type BodyBuilder interface {
	Build(req Request) ([]byte, error)
}

// BodyBuilderFunc adapts a function to the BodyBuilder interface.
type BodyBuilderFunc func(req Request) ([]byte, error)

// Build implements BodyBuilder.
func (f BodyBuilderFunc) Build(req Request) ([]byte, error) { return f(req) }

// JSONBodyBuilder is the default body builder. It serializes req.Params to a
// JSON object for every non-GET request that has parameters.
type JSONBodyBuilder struct{}

// Build returns no body for GET requests (even when parameters are present)
// and for requests without parameters. Serialization errors are returned
// unwrapped.
func (JSONBodyBuilder) Build(req Request) ([]byte, error) {
	if req.method() == http.MethodGet || len(req.Params) == 0 {
		return nil, nil
	}
	return json.Marshal(req.Params)
}
