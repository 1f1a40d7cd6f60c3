package apiclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetrics(t *testing.T) {
	t.Run("given valid meter, then creates all instruments", func(t *testing.T) {
		mp := sdkmetric.NewMeterProvider()
		defer mp.Shutdown(context.Background())

		m, err := newMetrics(mp.Meter("test"))

		require.NoError(t, err)
		require.NotNil(t, m)
		assert.NotNil(t, m.requestDuration)
		assert.NotNil(t, m.responseBodySize)
		assert.NotNil(t, m.activeRequests)
		assert.NotNil(t, m.requestErrors)
	})
}

func TestMetrics_Record(t *testing.T) {
	tests := []struct {
		name   string
		record func(*metrics, context.Context)
	}{
		{
			name: "given request duration, then records it",
			record: func(m *metrics, ctx context.Context) {
				m.recordRequestDuration(ctx, 100*time.Millisecond, nil)
			},
		},
		{
			name: "given response body size, then records it",
			record: func(m *metrics, ctx context.Context) {
				m.recordResponseBodySize(ctx, 2048, nil)
			},
		},
		{
			name: "given active request start and end, then updates counter",
			record: func(m *metrics, ctx context.Context) {
				m.recordActiveRequestStart(ctx, nil)
				m.recordActiveRequestEnd(ctx, nil)
			},
		},
		{
			name: "given an error, then counts it with its type",
			record: func(m *metrics, ctx context.Context) {
				m.recordError(ctx, ErrorTypeTimeout, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
			defer mp.Shutdown(context.Background())

			m, err := newMetrics(mp.Meter("test"))
			require.NoError(t, err)

			ctx := context.Background()
			tt.record(m, ctx)

			var rm metricdata.ResourceMetrics
			require.NoError(t, reader.Collect(ctx, &rm))
			assert.NotEmpty(t, rm.ScopeMetrics)
		})
	}
}

func TestMetrics_NilSafety(t *testing.T) {
	t.Run("given nil metrics, then recording does not panic", func(t *testing.T) {
		var m *metrics
		ctx := context.Background()

		assert.NotPanics(t, func() {
			m.recordRequestDuration(ctx, time.Second, nil)
			m.recordResponseBodySize(ctx, 100, nil)
			m.recordActiveRequestStart(ctx, nil)
			m.recordActiveRequestEnd(ctx, nil)
			m.recordError(ctx, "test", nil)
		})
	})

	t.Run("given empty instruments, then recording does not panic", func(t *testing.T) {
		m := &metrics{}
		ctx := context.Background()

		assert.NotPanics(t, func() {
			m.recordRequestDuration(ctx, time.Second, nil)
			m.recordResponseBodySize(ctx, 100, nil)
			m.recordActiveRequestStart(ctx, nil)
			m.recordActiveRequestEnd(ctx, nil)
			m.recordError(ctx, "test", nil)
		})
	})
}
