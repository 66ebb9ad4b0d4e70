package fulfillment

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
)

// serviceName prefixes span names and profiling labels
const serviceName = "fulfillment"

// Service exposes the fulfillment workflow to the interface layer
type Service struct {
	resolver   *ShippingModeResolver
	submitter  *ShipmentSubmitter
	tracker    *TrackingResolver
	reconciler *ReconciliationWriter
	retriever  *PickupDetailRetriever
	guard      fulfillment.ShipmentGuard
	cfg        Config
	logger     *zap.Logger
}

// NewService wires the fulfillment components together.
// guard and metrics may be nil.
func NewService(
	api fulfillment.LogisticsAPI,
	repo fulfillment.OrderRepository,
	guard fulfillment.ShipmentGuard,
	cfg Config,
	metrics Metrics,
	logger *zap.Logger,
) *Service {
	cfg = cfg.withDefaults()
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("fulfillment")

	splitOrders := NewSplitOrderDetector(api, logger)
	reconciler := NewReconciliationWriter(repo, api, logger)
	return &Service{
		resolver:   NewShippingModeResolver(splitOrders, reconciler, logger),
		submitter:  NewShipmentSubmitter(api, metrics, logger),
		tracker:    NewTrackingResolver(api, cfg, metrics, logger),
		reconciler: reconciler,
		retriever:  NewPickupDetailRetriever(api, repo, splitOrders, reconciler, cfg, metrics, logger),
		guard:      guard,
		cfg:        cfg,
		logger:     logger,
	}
}

// SubmitShipment resolves the shipment payload for mode, ships the order,
// resolves the tracking number and reconciles the local record.
func (s *Service) SubmitShipment(ctx context.Context, orderSn string, mode fulfillment.ShippingMode) (*SubmitShipmentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "submit_shipment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderSn, orderSn,
		telemetry.SpanAttrShippingMode, string(mode),
	)

	var result *SubmitShipmentResult
	var err error
	labels := telemetry.ServiceLabels(serviceName, "submit_shipment", map[string]string{
		telemetry.ProfilingLabelShippingMode: string(mode),
	})
	telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
		result, err = s.submitShipment(ctx, span, orderSn, mode)
	})
	return result, err
}

func (s *Service) submitShipment(ctx context.Context, span trace.Span, orderSn string, mode fulfillment.ShippingMode) (*SubmitShipmentResult, error) {
	if orderSn == "" {
		return nil, fulfillment.NewError(fulfillment.KindValidation, "order sn is required")
	}
	if !mode.IsRequestable() {
		return nil, fulfillment.NewError(fulfillment.KindValidation, "mode must be pickup or dropoff")
	}

	release, err := s.acquire(ctx, orderSn)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	// the workflow must finish before the guard can expire
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShipmentLockTTL)
	defer cancel()

	payload, err := s.resolver.Resolve(ctx, orderSn, mode)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.submitter.Submit(ctx, payload); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resolution := s.tracker.Resolve(ctx, orderSn, payload.PackageNumber)
	channel := resolution.ShippingCarrier
	if channel == "" {
		channel = s.cfg.DefaultCarrier
	}

	patch := fulfillment.TrackingFacts{
		TrackingNumber:  resolution.TrackingNumber,
		PackageNumber:   resolution.PackageNumber,
		ShippingCarrier: resolution.ShippingCarrier,
	}
	result := &SubmitShipmentResult{
		OrderSn:         orderSn,
		ShippingMode:    payload.Mode,
		TrackingNumber:  resolution.TrackingNumber,
		PackageNumber:   resolution.PackageNumber,
		ShippingChannel: channel,
		DropoffInfo:     payload.Dropoff,
		Attempts:        resolution.AttemptsMade,
	}
	if payload.Pickup != nil {
		payload.Pickup.ShippingChannel = channel
		result.PickupInfo = payload.Pickup.ToDetails()
		patch.PickupDetails = result.PickupInfo
	}

	s.reconciler.Record(ctx, orderSn, patch)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPackageNumber, resolution.PackageNumber,
		telemetry.SpanAttrAttempts, resolution.AttemptsMade,
	)
	telemetry.SetOK(span)
	return result, nil
}

// GetPickupDetails returns the fulfillment view of an order
func (s *Service) GetPickupDetails(ctx context.Context, orderSn string, debug bool) (*PickupDetailsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "get_pickup_details")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderSn, orderSn)

	var result *PickupDetailsResult
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.ServiceLabels(serviceName, "get_pickup_details", nil), func(ctx context.Context) {
		result, err = s.retriever.Retrieve(ctx, orderSn, debug)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPickupSource, string(result.Source))
	telemetry.SetOK(span)
	return result, nil
}

// acquire takes the per-order guard. A guard backend failure does not block
// the shipment; a submission already in flight does.
func (s *Service) acquire(ctx context.Context, orderSn string) (func(), error) {
	noop := func() {}
	if s.guard == nil {
		return noop, nil
	}

	ok, err := s.guard.Acquire(ctx, orderSn, s.cfg.ShipmentLockTTL)
	if err != nil {
		s.logger.Warn("shipment guard unavailable, continuing without it",
			zap.String("order_sn", orderSn),
			zap.Error(err),
		)
		return noop, nil
	}
	if !ok {
		return nil, fulfillment.NewError(fulfillment.KindConflict, "a shipment for this order is already in progress")
	}

	return func() {
		// Release even if the request context is already cancelled
		if err := s.guard.Release(context.WithoutCancel(ctx), orderSn); err != nil {
			s.logger.Warn("failed to release shipment guard", zap.String("order_sn", orderSn), zap.Error(err))
		}
	}, nil
}
