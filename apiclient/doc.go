// Package apiclient funnels described HTTP calls into exactly one typed
// outcome per call.
//
// A caller supplies a request descriptor (endpoint, method, parameters,
// headers); the dispatcher builds the wire request, sends it through an
// instrumented net/http transport, validates the response status, decodes the
// JSON body, and reports exactly one of (value, error): synchronously, or
// through a completion callback delivered on an injectable Scheduler.
//
// # Quick Start
//
//	client := apiclient.New(
//	    apiclient.WithBaseURL("https://api.example.com"),
//	    apiclient.WithServiceName("billing"),
//	)
//
//	// Typed decode into a schema struct.
//	user, _, err := apiclient.Decode[User](ctx, client, apiclient.Request{
//	    Endpoint: "/users/42",
//	    Method:   http.MethodGet,
//	})
//
//	// Untyped decode into a generic JSON object.
//	obj, headers, err := client.Object(ctx, apiclient.Request{Endpoint: "/status"})
//
//	// Structurally validated payload (object or array, nothing else).
//	p, _, err := client.Payload(ctx, apiclient.Request{Endpoint: "/feed"})
//	if items, ok := p.Array(); ok {
//	    // ...
//	}
//
// # Asynchronous Calls
//
// Every operation has an asynchronous form that reports through a callback.
// Callbacks fire exactly once per call, pre-flight failures such as a
// malformed URL or an unserializable body included, and are delivered on the
// client's Scheduler (default: a serial scheduler, so no two completions
// ever run concurrently):
//
//	apiclient.DecodeAsync(ctx, client, req, func(res apiclient.Result[User]) {
//	    if !res.Ok() {
//	        log.Print(res.Err)
//	        return
//	    }
//	    render(res.Value)
//	})
//
// # Requests
//
// Request is a plain immutable value; anything implementing Descriptor can
// stand in for it, so API surfaces can model their calls as small types:
//
//	type getUser struct{ ID int }
//
//	func (g getUser) Describe() apiclient.Request {
//	    return apiclient.Request{Endpoint: fmt.Sprintf("/users/%d", g.ID)}
//	}
//
// Decode is a package-level function rather than a method because Go methods
// cannot introduce type parameters.
//
// # Error Model
//
// Failures produced by the funnel itself are *Error values classified by
// Kind (wrong status code, empty body, unparseable body, invalid URL, ...).
// Transport errors from net/http and decode errors from the configured
// Decoder pass through verbatim. Use KindOf or errors.Is to branch:
//
//	if apiclient.KindOf(err) == apiclient.KindWrongStatusCode {
//	    // server answered outside the accepted status set
//	}
//
// # Observability
//
// Every dispatch is traced and measured through OpenTelemetry (span per
// request, duration histogram, active-request and error counters). Debug
// logging of requests and responses uses zerolog and is off unless
// WithDebug(true) is set.
package apiclient
