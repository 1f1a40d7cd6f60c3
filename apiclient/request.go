package apiclient

import (
	"net/http"
	"strings"
)

// RequestType coarsely classifies a described call. The dispatcher carries
// the tag for the benefit of custom body builders and logging; it does not
// change how a request is sent.
type RequestType int

const (
	// TypeRegular marks an ordinary JSON API call.
	TypeRegular RequestType = iota

	// TypeMultipart marks a call whose caller intends a multipart upload
	// body. The built-in JSON body builder ignores the tag; a custom
	// BodyBuilder can branch on it.
	TypeMultipart
)

// String implements fmt.Stringer.
func (t RequestType) String() string {
	if t == TypeMultipart {
		return "multipart"
	}
	return "regular"
}

// Descriptor describes one HTTP call. The dispatcher asks the descriptor for
// its Request exactly once per dispatch and never mutates the returned value
// or the maps it references.
type Descriptor interface {
	Describe() Request
}

// Request is a plain value describing one HTTP call. It implements
// Descriptor, so it can be passed to the dispatch operations directly or
// returned from richer descriptor types.
type Request struct {
	// Endpoint is the path appended to the client's base URL to form the
	// target URL. It may also be an absolute URL when the client has no
	// base URL configured.
	Endpoint string

	// Method is the HTTP verb. Empty means GET.
	Method string

	// Params are handed to the client's BodyBuilder. The default builder
	// serializes them to a JSON object for every non-GET request and
	// builds no body for GET requests.
	Params map[string]any

	// Headers are attached to the wire request verbatim, overriding the
	// client's default headers on conflict.
	Headers map[string]string

	// Type tags the call as regular or multipart. Informational.
	Type RequestType
}

// Describe implements Descriptor.
func (r Request) Describe() Request { return r }

// Get describes a GET call to the given endpoint.
func Get(endpoint string) Request {
	return Request{Endpoint: endpoint}
}

// Post describes a POST call carrying the given parameters.
func Post(endpoint string, params map[string]any) Request {
	return Request{Endpoint: endpoint, Method: http.MethodPost, Params: params}
}

// Put describes a PUT call carrying the given parameters.
func Put(endpoint string, params map[string]any) Request {
	return Request{Endpoint: endpoint, Method: http.MethodPut, Params: params}
}

// Delete describes a DELETE call to the given endpoint.
func Delete(endpoint string) Request {
	return Request{Endpoint: endpoint, Method: http.MethodDelete}
}

// method returns the effective verb, defaulting to GET and normalizing case
// so that "post" and http.MethodPost describe the same call.
func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(r.Method)
}
