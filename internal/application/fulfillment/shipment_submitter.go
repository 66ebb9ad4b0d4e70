package fulfillment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// ShipmentSubmitter sends an assembled payload to the platform.
// Submissions are never retried: a repeated call could book the carrier twice.
type ShipmentSubmitter struct {
	api     fulfillment.LogisticsAPI
	metrics Metrics
	logger  *zap.Logger
}

// NewShipmentSubmitter creates a new ShipmentSubmitter
func NewShipmentSubmitter(api fulfillment.LogisticsAPI, metrics Metrics, logger *zap.Logger) *ShipmentSubmitter {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentSubmitter{api: api, metrics: metrics, logger: logger}
}

// Submit ships the payload once
func (s *ShipmentSubmitter) Submit(ctx context.Context, payload *fulfillment.ShipmentPayload) error {
	err := s.api.ShipOrder(ctx, payload)
	if err == nil {
		s.metrics.RecordShipment(ctx, payload.Mode, OutcomeSubmitted)
		s.logger.Info("shipment submitted",
			zap.String("order_sn", payload.OrderSn),
			zap.String("mode", string(payload.Mode)),
			zap.String("package_number", payload.PackageNumber),
		)
		return nil
	}

	if fulfillment.KindOf(err) != "" {
		s.metrics.RecordShipment(ctx, payload.Mode, OutcomeRejected)
		return err
	}
	remote, ok := fulfillment.AsRemoteError(err)
	if !ok {
		s.metrics.RecordShipment(ctx, payload.Mode, OutcomeFailed)
		return fmt.Errorf("ship order: %w", err)
	}

	s.metrics.RecordShipment(ctx, payload.Mode, OutcomeRejected)
	s.logger.Warn("shipment rejected by platform",
		zap.String("order_sn", payload.OrderSn),
		zap.String("remote_error", remote.Code),
		zap.String("remote_message", remote.Message),
	)
	if fulfillment.ClassifyRemoteError(remote.Code, remote.Message) == fulfillment.OutcomeAuth {
		return fulfillment.NewRemoteError(fulfillment.KindAuth, "platform rejected credentials", remote)
	}
	return fulfillment.NewRemoteError(fulfillment.KindRemoteBusiness, "ship order rejected", remote)
}
