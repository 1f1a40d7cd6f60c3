package apiclient

import (
	"errors"
	"strings"
)

// Kind classifies a dispatch failure. Kinds produced by the funnel itself
// form a small closed set; the remaining kinds are reserved for callers
// layering response conventions (result envelopes, error arrays) on top of
// the raw dispatch and are never produced by this package.
type Kind string

const (
	// KindInvalidURL reports that the base URL and endpoint do not combine
	// into a valid absolute URL. A malformed URL is always reported to the
	// caller; it never silently drops the call.
	KindInvalidURL Kind = "invalid_url"

	// KindNotHTTPResponse reports that the underlying client produced
	// neither a response nor an error. Should not occur with net/http.
	KindNotHTTPResponse Kind = "not_http_response"

	// KindNoData reports an empty response body, regardless of status code.
	KindNoData Kind = "no_data_from_server"

	// KindWrongStatusCode reports a status outside the accepted set for the
	// dispatch operation. The message is a debug description of the
	// request and response, including the status code.
	KindWrongStatusCode Kind = "wrong_status_code"

	// KindNotParseable reports a body that is not valid for the expected
	// shape. The message carries the raw body text.
	KindNotParseable Kind = "response_not_parseable"
)

// Reserved kinds for caller-defined response conventions.
const (
	// KindUnexpectedStructure marks a decodable body whose structure does
	// not match the convention the caller expected.
	KindUnexpectedStructure Kind = "unexpected_data_structure"

	// KindNotUnboxable marks an envelope that cannot be unboxed into its
	// payload.
	KindNotUnboxable Kind = "not_unboxable_object"

	// KindUnsuccessfulOperation marks a well-formed response that reports
	// operation failure.
	KindUnsuccessfulOperation Kind = "unsuccessful_operation"

	// KindServerErrors marries a failure to the individual errors a server
	// reported. Construct it with ServerErrors.
	KindServerErrors Kind = "server_reported_errors"

	// KindCustom is the caller-defined escape hatch.
	KindCustom Kind = "custom"
)

// Error is the failure type produced by the dispatcher. Transport and decode
// errors are not wrapped in it; they reach the caller verbatim.
type Error struct {
	Kind    Kind
	Message string

	// Errs carries the server-reported sub-errors of a KindServerErrors
	// value. Nil for every other kind.
	Errs []error
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// CustomError builds a KindCustom error carrying a caller-defined message.
func CustomError(message string) *Error {
	return &Error{Kind: KindCustom, Message: message}
}

// ServerErrors builds a KindServerErrors value from the individual errors a
// server reported. The sub-errors remain reachable through errors.Is and
// errors.As.
func ServerErrors(errs ...error) *Error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return &Error{
		Kind:    KindServerErrors,
		Message: strings.Join(msgs, "; "),
		Errs:    errs,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Is matches by kind, so errors.Is(err, &Error{Kind: KindNoData}) holds for
// any empty-body failure. A target with a message matches only exactly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" && t.Message != e.Message {
		return false
	}
	return e.Kind == t.Kind
}

// Unwrap exposes server-reported sub-errors to the errors package.
func (e *Error) Unwrap() []error { return e.Errs }

// KindOf returns the Kind of err, or the empty Kind when err was not
// produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Kind("")
}
