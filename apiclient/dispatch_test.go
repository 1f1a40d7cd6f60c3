package apiclient

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// doerFunc adapts a function to the Doer interface for tests.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func newMockClient(mock *MockTransport, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL("https://api.test")}, opts...)
	return NewWithTransport(mock, opts...)
}

func TestDecode_Success(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponseWithHeaders(http.StatusOK, `{"id":1,"name":"Ada"}`, map[string]string{
		"X-Total-Count": "1",
	})
	client := newMockClient(mock)

	got, headers, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/1"})

	require.NoError(t, err)
	assert.Equal(t, user{ID: 1, Name: "Ada"}, got)
	assert.Equal(t, "1", headers.Get("X-Total-Count"))
	assert.Equal(t, "https://api.test/users/1", mock.LastRequest().URL.String())
}

func TestDecode_StatusValidation(t *testing.T) {
	type args struct {
		status int
		body   string
	}

	tests := []struct {
		name     string
		args     args
		wantKind Kind
	}{
		{
			name: "given 200, then decodes",
			args: args{status: http.StatusOK, body: `{"id":1}`},
		},
		{
			name: "given 201, then decodes",
			args: args{status: http.StatusCreated, body: `{"id":1}`},
		},
		{
			name: "given 202, then decodes",
			args: args{status: http.StatusAccepted, body: `{"id":1}`},
		},
		{
			name: "given 203, then decodes",
			args: args{status: http.StatusNonAuthoritativeInfo, body: `{"id":1}`},
		},
		{
			name: "given 204 with a body, then decodes",
			args: args{status: http.StatusNoContent, body: `{"id":1}`},
		},
		{
			name:     "given 205, then fails with wrong status code",
			args:     args{status: http.StatusResetContent, body: `{"id":1}`},
			wantKind: KindWrongStatusCode,
		},
		{
			name:     "given 301, then fails with wrong status code",
			args:     args{status: 301, body: `{"id":1}`},
			wantKind: KindWrongStatusCode,
		},
		{
			name:     "given 400, then fails even though the body decodes",
			args:     args{status: http.StatusBadRequest, body: `{"id":1}`},
			wantKind: KindWrongStatusCode,
		},
		{
			name:     "given 500, then fails with wrong status code",
			args:     args{status: http.StatusInternalServerError, body: `{"error":"boom"}`},
			wantKind: KindWrongStatusCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockTransport()
			mock.StubResponse(tt.args.status, tt.args.body)
			client := newMockClient(mock)

			got, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/1"})

			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, 1, got.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			// The message is a debug description carrying the status code.
			assert.Contains(t, err.Error(), strconv.Itoa(tt.args.status))
			assert.Contains(t, err.Error(), "https://api.test/users/1")
		})
	}
}

func TestDecode_EmptyBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"given 200 with empty body, then reports no data", http.StatusOK},
		{"given 204 with empty body, then reports no data", http.StatusNoContent},
		{"given 404 with empty body, then no data wins over wrong status", http.StatusNotFound},
		{"given 500 with empty body, then no data wins over wrong status", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockTransport()
			mock.StubResponse(tt.status, "")
			client := newMockClient(mock)

			_, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/1"})

			require.Error(t, err)
			assert.Equal(t, KindNoData, KindOf(err))
		})
	}
}

func TestDecode_DecoderErrorVerbatim(t *testing.T) {
	t.Run("given undecodable body, then decoder error passes through and raw body is logged", func(t *testing.T) {
		var logs bytes.Buffer
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `not json`)
		client := newMockClient(mock, WithLogger(zerolog.New(&logs)))

		_, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/1"})

		require.Error(t, err)
		assert.Empty(t, KindOf(err), "decoder errors must not be rewrapped")
		assert.Contains(t, logs.String(), "not json", "raw body is the diagnostic")
	})
}

func TestDecode_TransportErrorVerbatim(t *testing.T) {
	boom := errors.New("connection exploded")
	mock := NewMockTransport()
	mock.StubError(boom)
	client := newMockClient(mock)

	_, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/1"})

	require.Error(t, err)
	assert.Empty(t, KindOf(err), "transport errors must not be rewrapped")
	assert.Contains(t, err.Error(), "connection exploded")
}

func TestDecode_InvalidURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		endpoint string
	}{
		{"given no base URL and relative endpoint, then invalid", "", "/users"},
		{"given scheme-less base URL, then invalid", "://broken", "/users"},
		{"given empty base URL and empty endpoint, then invalid", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockTransport()
			client := NewWithTransport(mock, WithBaseURL(tt.baseURL))

			_, _, err := Decode[user](context.Background(), client, Request{Endpoint: tt.endpoint})

			require.Error(t, err)
			assert.Equal(t, KindInvalidURL, KindOf(err))
			assert.Equal(t, 0, mock.RequestCount(), "nothing may touch the network")
		})
	}
}

func TestDecode_BodyBuilderError(t *testing.T) {
	built := errors.New("cannot serialize")
	mock := NewMockTransport()
	client := newMockClient(mock, WithBodyBuilder(BodyBuilderFunc(func(Request) ([]byte, error) {
		return nil, built
	})))

	_, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users", Method: http.MethodPost})

	assert.ErrorIs(t, err, built)
	assert.Equal(t, 0, mock.RequestCount(), "a failed body build never reaches the network")
}

func TestDecode_NotHTTPResponse(t *testing.T) {
	t.Run("given a doer returning neither response nor error, then reports it", func(t *testing.T) {
		client := New(
			WithBaseURL("https://api.test"),
			WithDoer(doerFunc(func(*http.Request) (*http.Response, error) {
				return nil, nil
			})),
		)

		_, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/1"})

		require.Error(t, err)
		assert.Equal(t, KindNotHTTPResponse, KindOf(err))
	})
}

func TestDecode_RequestAssembly(t *testing.T) {
	t.Run("given POST with params, then body and headers are assembled", func(t *testing.T) {
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `{"id":9}`)
		client := newMockClient(mock, WithDefaultHeader("X-Api-Key", "default"))

		_, _, err := Decode[user](context.Background(), client, Request{
			Endpoint: "/users",
			Method:   http.MethodPost,
			Params:   map[string]any{"name": "Ada"},
			Headers:  map[string]string{"X-Trace": "abc"},
		})

		require.NoError(t, err)
		wire := mock.LastRequest()
		assert.JSONEq(t, `{"name":"Ada"}`, string(mock.LastBody()))
		assert.Equal(t, "application/json", wire.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", wire.Header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", wire.Header.Get("Pragma"))
		assert.Equal(t, "default", wire.Header.Get("X-Api-Key"))
		assert.Equal(t, "abc", wire.Header.Get("X-Trace"))
	})

	t.Run("given GET with params, then no body and no content type", func(t *testing.T) {
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `{"id":9}`)
		client := newMockClient(mock)

		_, _, err := Decode[user](context.Background(), client, Request{
			Endpoint: "/users",
			Params:   map[string]any{"ignored": true},
		})

		require.NoError(t, err)
		assert.Empty(t, mock.LastBody())
		assert.Empty(t, mock.LastRequest().Header.Get("Content-Type"))
	})

	t.Run("given descriptor header conflicting with default, then descriptor wins", func(t *testing.T) {
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `{"id":9}`)
		client := newMockClient(mock, WithDefaultHeader("X-Api-Key", "default"))

		_, _, err := Decode[user](context.Background(), client, Request{
			Endpoint: "/users",
			Headers:  map[string]string{"X-Api-Key": "override"},
		})

		require.NoError(t, err)
		assert.Equal(t, "override", mock.LastRequest().Header.Get("X-Api-Key"))
	})

	t.Run("given request ID enabled, then a UUID is stamped", func(t *testing.T) {
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `{"id":9}`)
		client := newMockClient(mock, WithRequestID())

		_, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users"})

		require.NoError(t, err)
		id := mock.LastRequest().Header.Get(RequestIDHeader)
		_, parseErr := uuid.Parse(id)
		assert.NoError(t, parseErr, "X-Request-ID must be a UUID, got %q", id)
	})
}

func TestDecode_PerCallDecoder(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, `id=3`)
	client := newMockClient(mock, WithDecoder(DecoderFunc(func([]byte, any) error {
		return errors.New("client decoder must not run")
	})))

	got, _, err := Decode[user](context.Background(), client, Request{Endpoint: "/users/3"},
		WithCallDecoder(DecoderFunc(func(data []byte, v any) error {
			v.(*user).ID = 3
			return nil
		})))

	require.NoError(t, err)
	assert.Equal(t, 3, got.ID)
}

func TestDecodeAsync(t *testing.T) {
	t.Run("given success, then completion fires exactly once", func(t *testing.T) {
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `{"id":1,"name":"Ada"}`)
		client := newMockClient(mock)

		results := make(chan Result[user], 2)
		DecodeAsync[user](context.Background(), client, Request{Endpoint: "/users/1"}, func(r Result[user]) {
			results <- r
		})

		select {
		case res := <-results:
			require.True(t, res.Ok())
			assert.Equal(t, "Ada", res.Value.Name)
		case <-time.After(2 * time.Second):
			t.Fatal("completion never delivered")
		}

		select {
		case <-results:
			t.Fatal("completion delivered twice")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("given malformed URL, then completion still fires", func(t *testing.T) {
		mock := NewMockTransport()
		client := NewWithTransport(mock) // no base URL

		results := make(chan Result[user], 1)
		DecodeAsync[user](context.Background(), client, Request{Endpoint: "/users"}, func(r Result[user]) {
			results <- r
		})

		select {
		case res := <-results:
			require.False(t, res.Ok())
			assert.Equal(t, KindInvalidURL, KindOf(res.Err))
		case <-time.After(2 * time.Second):
			t.Fatal("pre-flight failure silently dropped the completion")
		}
	})

	t.Run("given many calls, then completions never overlap", func(t *testing.T) {
		mock := NewMockTransport()
		mock.StubResponse(http.StatusOK, `{"id":1}`)
		client := newMockClient(mock)

		const calls = 32
		var (
			wg      sync.WaitGroup
			active  atomic.Int32
			maxSeen atomic.Int32
		)

		wg.Add(calls)
		for i := 0; i < calls; i++ {
			DecodeAsync[user](context.Background(), client, Request{Endpoint: "/users/1"}, func(Result[user]) {
				defer wg.Done()
				now := active.Add(1)
				if now > maxSeen.Load() {
					maxSeen.Store(now)
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
			})
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxSeen.Load())
	})
}

func TestObject(t *testing.T) {
	type args struct {
		status int
		body   string
	}

	tests := []struct {
		name     string
		args     args
		wantKind Kind
		wantMsg  string
		want     map[string]any
	}{
		{
			name: "given 200 with object body, then returns the object",
			args: args{status: http.StatusOK, body: `{"name":"Ada","tags":["a"]}`},
			want: map[string]any{"name": "Ada", "tags": []any{"a"}},
		},
		{
			name: "given 201 with object body, then returns the object",
			args: args{status: http.StatusCreated, body: `{"ok":true}`},
			want: map[string]any{"ok": true},
		},
		{
			name:     "given array body, then not parseable with raw text",
			args:     args{status: http.StatusOK, body: `[1,2]`},
			wantKind: KindNotParseable,
			wantMsg:  `[1,2]`,
		},
		{
			name:     "given null body, then not parseable",
			args:     args{status: http.StatusOK, body: `null`},
			wantKind: KindNotParseable,
			wantMsg:  `null`,
		},
		{
			name:     "given non-JSON body, then not parseable with raw text",
			args:     args{status: http.StatusOK, body: `not json`},
			wantKind: KindNotParseable,
			wantMsg:  `not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockTransport()
			mock.StubResponse(tt.args.status, tt.args.body)
			client := newMockClient(mock)

			got, _, err := client.Object(context.Background(), Request{Endpoint: "/things"})

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				var de *Error
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.wantMsg, de.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectAsync(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, `{"n":1}`)
	client := newMockClient(mock)

	results := make(chan Result[map[string]any], 1)
	client.ObjectAsync(context.Background(), Request{Endpoint: "/things"}, func(r Result[map[string]any]) {
		results <- r
	})

	select {
	case res := <-results:
		require.True(t, res.Ok())
		assert.Equal(t, float64(1), res.Value["n"])
	case <-time.After(2 * time.Second):
		t.Fatal("completion never delivered")
	}
}

func TestPayloadDispatch(t *testing.T) {
	type args struct {
		status int
		body   string
	}

	tests := []struct {
		name     string
		args     args
		wantKind Kind
		want     PayloadKind
	}{
		{
			name: "given 200 with object, then object payload",
			args: args{status: http.StatusOK, body: `{"a":1}`},
			want: PayloadObject,
		},
		{
			name: "given 200 with array, then array payload",
			args: args{status: http.StatusOK, body: `[1,2,3]`},
			want: PayloadArray,
		},
		{
			name:     "given 201, then wrong status code on the strict path",
			args:     args{status: http.StatusCreated, body: `{"a":1}`},
			wantKind: KindWrongStatusCode,
		},
		{
			name:     "given 200 with scalar, then not parseable",
			args:     args{status: http.StatusOK, body: `"hello"`},
			wantKind: KindNotParseable,
		},
		{
			name:     "given 200 with non-JSON, then not parseable",
			args:     args{status: http.StatusOK, body: `not json`},
			wantKind: KindNotParseable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockTransport()
			mock.StubResponse(tt.args.status, tt.args.body)
			client := newMockClient(mock)

			got, _, err := client.Payload(context.Background(), Request{Endpoint: "/feed"})

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Kind())
		})
	}
}

func TestPayloadAsync(t *testing.T) {
	mock := NewMockTransport()
	mock.StubResponse(http.StatusOK, `["x"]`)
	client := newMockClient(mock)

	results := make(chan Result[Payload], 1)
	client.PayloadAsync(context.Background(), Request{Endpoint: "/feed"}, func(r Result[Payload]) {
		results <- r
	})

	select {
	case res := <-results:
		require.True(t, res.Ok())
		arr, ok := res.Value.Array()
		require.True(t, ok)
		assert.Equal(t, []any{"x"}, arr)
	case <-time.After(2 * time.Second):
		t.Fatal("completion never delivered")
	}
}

func TestDecode_EndToEnd(t *testing.T) {
	t.Run("given a live server, then round-trips request and response", func(t *testing.T) {
		var gotCacheControl, gotBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCacheControl = r.Header.Get("Cache-Control")
			buf := new(bytes.Buffer)
			buf.ReadFrom(r.Body)
			gotBody = buf.String()

			w.Header().Set("X-Server", "catalog")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":42,"name":"Widget"}`))
		}))
		defer server.Close()

		client := New(WithBaseURL(server.URL), WithServiceName("dispatch-test"))

		got, headers, err := Decode[user](context.Background(), client, Request{
			Endpoint: "/widgets",
			Method:   http.MethodPost,
			Params:   map[string]any{"name": "Widget"},
		})

		require.NoError(t, err)
		assert.Equal(t, 42, got.ID)
		assert.Equal(t, "catalog", headers.Get("X-Server"))
		assert.Equal(t, "no-cache", gotCacheControl)
		assert.JSONEq(t, `{"name":"Widget"}`, gotBody)
	})
}
