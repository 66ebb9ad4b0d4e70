package fulfillment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// TrackingResolver polls for the tracking number the platform assigns after shipment
type TrackingResolver struct {
	api      fulfillment.LogisticsAPI
	attempts int
	delay    time.Duration
	wait     func(ctx context.Context, d time.Duration) error
	metrics  Metrics
	logger   *zap.Logger
}

// NewTrackingResolver creates a new TrackingResolver
func NewTrackingResolver(api fulfillment.LogisticsAPI, cfg Config, metrics Metrics, logger *zap.Logger) *TrackingResolver {
	cfg = cfg.withDefaults()
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingResolver{
		api:      api,
		attempts: cfg.TrackingAttempts,
		delay:    cfg.TrackingRetryDelay,
		wait:     sleepContext,
		metrics:  metrics,
		logger:   logger,
	}
}

// Resolve looks the tracking number up, falling back to the order detail
// within each attempt. An unresolved number is reported as "" without error.
func (r *TrackingResolver) Resolve(ctx context.Context, orderSn, packageNumber string) *fulfillment.TrackingResolution {
	res := &fulfillment.TrackingResolution{PackageNumber: packageNumber}

	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := r.wait(ctx, r.delay); err != nil {
				r.logger.Debug("tracking lookup cancelled", zap.String("order_sn", orderSn), zap.Error(err))
				break
			}
		}
		res.AttemptsMade++

		if r.lookup(ctx, orderSn, res) {
			r.metrics.RecordTrackingResolution(ctx, res.AttemptsMade, true)
			return res
		}
	}

	r.logger.Info("tracking number not assigned yet",
		zap.String("order_sn", orderSn),
		zap.Int("attempts", res.AttemptsMade),
	)
	r.metrics.RecordTrackingResolution(ctx, res.AttemptsMade, false)
	return res
}

// lookup runs one attempt and reports whether a tracking number was found
func (r *TrackingResolver) lookup(ctx context.Context, orderSn string, res *fulfillment.TrackingResolution) bool {
	tn, err := r.api.GetTrackingNumber(ctx, orderSn, res.PackageNumber)
	if err != nil {
		r.logger.Debug("tracking number lookup failed",
			zap.String("order_sn", orderSn),
			zap.Int("attempt", res.AttemptsMade),
			zap.Error(err),
		)
	}
	if tn != "" {
		res.TrackingNumber = tn
		return true
	}

	detail, err := r.api.GetOrderDetail(ctx, orderSn)
	if err != nil {
		r.logger.Debug("order detail fallback failed",
			zap.String("order_sn", orderSn),
			zap.Int("attempt", res.AttemptsMade),
			zap.Error(err),
		)
		return false
	}
	if res.PackageNumber == "" {
		res.PackageNumber = detail.FirstPackageNumber()
	}
	if res.ShippingCarrier == "" {
		res.ShippingCarrier = detail.Carrier()
	}
	if tn := detail.KnownTrackingNumber(); tn != "" {
		res.TrackingNumber = tn
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
