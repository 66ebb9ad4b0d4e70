package fulfillment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// ShippingModeResolver assembles the shipment payload for a requested mode
type ShippingModeResolver struct {
	splitOrders *SplitOrderDetector
	reconciler  *ReconciliationWriter
	logger      *zap.Logger
	now         func() time.Time
}

// NewShippingModeResolver creates a new ShippingModeResolver
func NewShippingModeResolver(splitOrders *SplitOrderDetector, reconciler *ReconciliationWriter, logger *zap.Logger) *ShippingModeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingModeResolver{
		splitOrders: splitOrders,
		reconciler:  reconciler,
		logger:      logger,
		now:         time.Now,
	}
}

// Resolve determines how orderSn ships in the requested mode
func (r *ShippingModeResolver) Resolve(ctx context.Context, orderSn string, mode fulfillment.ShippingMode) (*fulfillment.ShipmentPayload, error) {
	if orderSn == "" {
		return nil, fulfillment.NewError(fulfillment.KindValidation, "order sn is required")
	}
	if !mode.IsRequestable() {
		return nil, fulfillment.NewError(fulfillment.KindValidation, fmt.Sprintf("unsupported shipping mode %q", mode))
	}

	params, err := r.splitOrders.FetchShippingParameters(ctx, orderSn)
	if err != nil {
		return nil, r.classify(ctx, orderSn, err)
	}
	return r.assemble(orderSn, mode, params)
}

func (r *ShippingModeResolver) assemble(orderSn string, mode fulfillment.ShippingMode, params *fulfillment.ShippingParameters) (*fulfillment.ShipmentPayload, error) {
	payload := &fulfillment.ShipmentPayload{
		OrderSn:       orderSn,
		PackageNumber: params.PackageNumber,
	}

	if !params.Supports(fulfillment.ShippingModePickup) &&
		!params.Supports(fulfillment.ShippingModeDropoff) &&
		params.Supports(fulfillment.ShippingModeNonIntegrated) {
		payload.Mode = fulfillment.ShippingModeNonIntegrated
		return payload, nil
	}

	if !params.Supports(mode) {
		return nil, &fulfillment.Error{
			Kind:    fulfillment.KindModeUnavailable,
			Message: fmt.Sprintf("%s is not offered for this order", mode),
			Detail:  params.Raw,
		}
	}

	payload.Mode = mode
	switch mode {
	case fulfillment.ShippingModePickup:
		if len(params.PickupAddresses) == 0 {
			return nil, &fulfillment.Error{Kind: fulfillment.KindNoPickupAddress, Message: "no pickup address available", Detail: params.Raw}
		}
		address := params.PickupAddresses[0]
		payload.Pickup = &fulfillment.PickupSelection{
			Address:  address,
			TimeSlot: fulfillment.SelectTimeSlot(address.TimeSlots, r.now()),
		}
	case fulfillment.ShippingModeDropoff:
		if len(params.DropoffBranches) == 0 {
			return nil, &fulfillment.Error{Kind: fulfillment.KindNoDropoffBranch, Message: "no dropoff branch available", Detail: params.Raw}
		}
		branch := params.DropoffBranches[0]
		payload.Dropoff = &fulfillment.DropoffSelection{
			Branch:         &branch,
			SenderRealName: params.SenderRealName,
		}
	}
	return payload, nil
}

// classify maps a shipping parameter failure onto the error taxonomy
func (r *ShippingModeResolver) classify(ctx context.Context, orderSn string, err error) error {
	if fulfillment.KindOf(err) != "" {
		return err
	}
	remote, ok := fulfillment.AsRemoteError(err)
	if !ok {
		return fmt.Errorf("get shipping parameter: %w", err)
	}

	switch fulfillment.ClassifyRemoteError(remote.Code, remote.Message) {
	case fulfillment.OutcomeAuth:
		return fulfillment.NewRemoteError(fulfillment.KindAuth, "platform rejected credentials", remote)
	case fulfillment.OutcomeStateMismatch:
		r.logger.Info("order no longer shippable, resyncing status",
			zap.String("order_sn", orderSn),
			zap.String("remote_error", remote.Code),
		)
		r.reconciler.ResyncStatus(ctx, orderSn)
		return fulfillment.NewRemoteError(fulfillment.KindStateMismatch, "order is no longer ready to ship, refresh the order list", remote)
	default:
		return fulfillment.NewRemoteError(fulfillment.KindRemoteBusiness, "platform rejected shipping parameter query", remote)
	}
}
