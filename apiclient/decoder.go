package apiclient

import (
	json "github.com/goccy/go-json"
)

// Decoder converts response body bytes into a caller-supplied value. The
// typed dispatch path hands it the non-empty body of an accepted response;
// a non-nil error is reported to the caller verbatim.
type Decoder interface {
	Decode(data []byte, v any) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte, v any) error

// Decode implements Decoder.
func (f DecoderFunc) Decode(data []byte, v any) error { return f(data, v) }

// JSONDecoder is the default decoder.
type JSONDecoder struct{}

// Decode implements Decoder using JSON unmarshaling.
func (JSONDecoder) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }
