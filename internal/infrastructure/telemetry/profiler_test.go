package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false, ApplicationName: "sellerdesk"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server address",
			cfg:     ProfilerConfig{Enabled: true, ApplicationName: "sellerdesk"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			cfg:     ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: ProfilerConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "sellerdesk",
				ProfileTypes:    []string{"cpu", "heap"},
			},
			wantErr: `unknown profile type "heap"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{" CPU ", "mutex", "cpu", ""})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, types)

	types, err = parseProfileTypes(nil)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels are visible to the wrapped function", func(t *testing.T) {
		var operation, mode string
		var hasOrder bool
		WithProfilingLabels(context.Background(), ServiceLabels("fulfillment", "submit_shipment", map[string]string{
			ProfilingLabelShippingMode: "pickup",
			"order_sn":                 "SN1",
		}), func(ctx context.Context) {
			operation, _ = pprof.Label(ctx, ProfilingLabelOperation)
			mode, _ = pprof.Label(ctx, ProfilingLabelShippingMode)
			_, hasOrder = pprof.Label(ctx, "order_sn")
		})

		assert.Equal(t, "fulfillment.submit_shipment", operation)
		assert.Equal(t, "pickup", mode)
		assert.False(t, hasOrder)
	})

	t.Run("runs fn without labels", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
		assert.True(t, called)
	})
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Shipping-Mode":   "dropoff",
		"service":         strings.Repeat("x", MaxLabelValueLength+10),
		"tracking_number": "TRK-1",
		"empty":           "",
		"$$":              "dropped",
	})

	assert.Equal(t, []string{
		"shipping_mode", "dropoff",
		"service", strings.Repeat("x", MaxLabelValueLength),
	}, pairs)
}
