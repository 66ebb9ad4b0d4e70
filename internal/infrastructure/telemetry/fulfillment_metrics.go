package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// ErrMeterNil is returned when a nil meter is supplied
var ErrMeterNil = &MetricsError{Op: "NewFulfillmentMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics setup error
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// FulfillmentMetrics records shipment outcomes, tracking resolution,
// pickup detail sources and platform call latency.
type FulfillmentMetrics struct {
	shipments        *Counter
	trackingAttempts *Histogram
	pickupSources    *Counter
	platformCalls    *Counter
	platformLatency  *Histogram
}

// NewFulfillmentMetrics creates the fulfillment instruments on meter
func NewFulfillmentMetrics(meter metric.Meter) (*FulfillmentMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   FulfillmentMetrics
		err error
	)
	if m.shipments, err = NewCounter(meter,
		"fulfillment_shipments_total",
		"Shipment submissions by mode and outcome",
		"{shipments}",
	); err != nil {
		return nil, err
	}
	if m.trackingAttempts, err = NewHistogram(meter, HistogramOpts{
		Name:        "fulfillment_tracking_attempts",
		Description: "Tracking number lookups made per shipment",
		Unit:        "{attempts}",
		Boundaries:  AttemptBuckets,
	}); err != nil {
		return nil, err
	}
	if m.pickupSources, err = NewCounter(meter,
		"fulfillment_pickup_details_total",
		"Pickup detail responses by source",
		"{responses}",
	); err != nil {
		return nil, err
	}
	if m.platformCalls, err = NewCounter(meter,
		"platform_calls_total",
		"Signed platform calls by path and outcome",
		"{calls}",
	); err != nil {
		return nil, err
	}
	if m.platformLatency, err = NewHistogram(meter, HistogramOpts{
		Name:        "platform_call_duration_seconds",
		Description: "Signed platform call latency",
		Unit:        "s",
		Boundaries:  PlatformDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordShipment counts one shipment submission
func (m *FulfillmentMetrics) RecordShipment(ctx context.Context, mode fulfillment.ShippingMode, outcome string) {
	m.shipments.Inc(ctx,
		AttrShippingMode.String(string(mode)),
		AttrOutcome.String(outcome),
	)
}

// RecordTrackingResolution records how many lookups a shipment needed
func (m *FulfillmentMetrics) RecordTrackingResolution(ctx context.Context, attempts int, resolved bool) {
	m.trackingAttempts.Record(ctx, float64(attempts), AttrResolved.Bool(resolved))
}

// RecordPickupSource counts one pickup detail response
func (m *FulfillmentMetrics) RecordPickupSource(ctx context.Context, source string) {
	m.pickupSources.Inc(ctx, AttrPickupSource.String(source))
}

// RecordPlatformCall records one signed platform call
func (m *FulfillmentMetrics) RecordPlatformCall(ctx context.Context, path string, status int, failed bool, latency time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	attrs := []attribute.KeyValue{
		AttrPlatformPath.String(path),
		AttrHTTPStatusCode.Int(status),
		AttrOutcome.String(outcome),
	}
	m.platformCalls.Inc(ctx, attrs...)
	m.platformLatency.RecordDuration(ctx, latency, attrs...)
}
