package apiclient

import (
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
)

// Result carries the outcome of one asynchronous dispatch. Exactly one of
// Value and Err is meaningful; Headers holds the response headers on success
// and is nil on failure.
type Result[T any] struct {
	Value   T
	Headers http.Header
	Err     error
}

// Ok reports whether the dispatch succeeded.
func (r Result[T]) Ok() bool { return r.Err == nil }

// PayloadKind enumerates the closed set of shapes a Payload can hold.
type PayloadKind int

const (
	// PayloadInvalid is the kind of the zero Payload.
	PayloadInvalid PayloadKind = iota

	// PayloadObject marks a top-level JSON object.
	PayloadObject

	// PayloadArray marks a top-level JSON array.
	PayloadArray
)

// String implements fmt.Stringer.
func (k PayloadKind) String() string {
	switch k {
	case PayloadObject:
		return "object"
	case PayloadArray:
		return "array"
	default:
		return "invalid"
	}
}

// Payload is a structurally validated JSON value: a top-level object or a
// top-level array, nothing else. Callers branch on the shape through Object
// and Array instead of casting, so an unexpected shape surfaces as a decode
// failure at dispatch time rather than a failed assertion later.
type Payload struct {
	kind PayloadKind
	obj  map[string]any
	arr  []any
}

// Kind returns the shape of the payload.
func (p Payload) Kind() PayloadKind { return p.kind }

// Object returns the payload as a JSON object. The second return is false
// when the payload holds an array or is the zero value.
func (p Payload) Object() (map[string]any, bool) {
	return p.obj, p.kind == PayloadObject
}

// Array returns the payload as a JSON array. The second return is false
// when the payload holds an object or is the zero value.
func (p Payload) Array() ([]any, bool) {
	return p.arr, p.kind == PayloadArray
}

// parsePayload decodes data and validates it against the closed shape set.
// Scalars, null, and invalid JSON are rejected.
func parsePayload(data []byte) (Payload, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Payload{}, err
	}
	switch val := v.(type) {
	case map[string]any:
		return Payload{kind: PayloadObject, obj: val}, nil
	case []any:
		return Payload{kind: PayloadArray, arr: val}, nil
	default:
		return Payload{}, fmt.Errorf("top-level %T is neither object nor array", v)
	}
}
