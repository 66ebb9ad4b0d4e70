package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// recordingMetrics captures recorded outcomes
type recordingMetrics struct {
	noopMetrics
	shipments []string
	resolved  []bool
	sources   []PickupSource
}

func (m *recordingMetrics) RecordShipment(_ context.Context, _ fulfillment.ShippingMode, outcome string) {
	m.shipments = append(m.shipments, outcome)
}

func (m *recordingMetrics) RecordTrackingResolution(_ context.Context, _ int, resolved bool) {
	m.resolved = append(m.resolved, resolved)
}

func (m *recordingMetrics) RecordPickupSource(_ context.Context, source string) {
	m.sources = append(m.sources, PickupSource(source))
}

func TestShipmentSubmitter_Submit(t *testing.T) {
	payload := &fulfillment.ShipmentPayload{OrderSn: "SN1", Mode: fulfillment.ShippingModeDropoff}

	tests := []struct {
		name        string
		shipErr     error
		wantErr     error
		wantOutcome string
	}{
		{name: "success", shipErr: nil, wantOutcome: OutcomeSubmitted},
		{name: "rejected", shipErr: remoteErr("logistics.ship_order_failed", "carrier busy"), wantErr: fulfillment.ErrRemoteBusiness, wantOutcome: OutcomeRejected},
		{name: "auth", shipErr: remoteErr("error_auth", "expired"), wantErr: fulfillment.ErrAuth, wantOutcome: OutcomeRejected},
		{name: "state mismatch surfaces verbatim", shipErr: remoteErr("logistics.order_status_error", "already shipped"), wantErr: fulfillment.ErrRemoteBusiness, wantOutcome: OutcomeRejected},
		{name: "classified", shipErr: fulfillment.NewError(fulfillment.KindValidation, "bad"), wantErr: fulfillment.ErrValidation, wantOutcome: OutcomeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockLogisticsAPI)
			api.On("ShipOrder", mock.Anything, payload).Return(tt.shipErr).Once()
			metrics := &recordingMetrics{}

			s := NewShipmentSubmitter(api, metrics, nil)
			err := s.Submit(context.Background(), payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{tt.wantOutcome}, metrics.shipments)
			api.AssertNumberOfCalls(t, "ShipOrder", 1)
		})
	}
}

func TestShipmentSubmitter_RemotePayloadIsVerbatim(t *testing.T) {
	payload := &fulfillment.ShipmentPayload{OrderSn: "SN1", Mode: fulfillment.ShippingModePickup}
	rejection := remoteErr("logistics.ship_order_failed", "carrier busy")
	api := new(MockLogisticsAPI)
	api.On("ShipOrder", mock.Anything, payload).Return(rejection).Once()

	err := NewShipmentSubmitter(api, nil, nil).Submit(context.Background(), payload)
	remote, ok := fulfillment.AsRemoteError(err)
	require.True(t, ok)
	assert.Same(t, rejection, remote)
}

func TestShipmentSubmitter_TransportFailureIsUnclassified(t *testing.T) {
	payload := &fulfillment.ShipmentPayload{OrderSn: "SN1", Mode: fulfillment.ShippingModePickup}
	transport := errors.New("i/o timeout")
	api := new(MockLogisticsAPI)
	api.On("ShipOrder", mock.Anything, payload).Return(transport).Once()
	metrics := &recordingMetrics{}

	err := NewShipmentSubmitter(api, metrics, nil).Submit(context.Background(), payload)
	assert.ErrorIs(t, err, transport)
	assert.Equal(t, fulfillment.ErrorKind(""), fulfillment.KindOf(err))
	assert.Equal(t, []string{OutcomeFailed}, metrics.shipments)
	api.AssertNumberOfCalls(t, "ShipOrder", 1)
}
