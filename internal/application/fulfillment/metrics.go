package fulfillment

import (
	"context"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// Metrics records fulfillment outcomes
type Metrics interface {
	RecordShipment(ctx context.Context, mode fulfillment.ShippingMode, outcome string)
	RecordTrackingResolution(ctx context.Context, attempts int, resolved bool)
	RecordPickupSource(ctx context.Context, source string)
}

// Shipment outcomes
const (
	OutcomeSubmitted = "submitted"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

type noopMetrics struct{}

func (noopMetrics) RecordShipment(context.Context, fulfillment.ShippingMode, string) {}
func (noopMetrics) RecordTrackingResolution(context.Context, int, bool)              {}
func (noopMetrics) RecordPickupSource(context.Context, string)                       {}
