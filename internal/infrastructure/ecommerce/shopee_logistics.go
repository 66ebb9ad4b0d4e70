package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/integration"
)

// shopeeOrderDetailFields are the optional fields the fulfillment flow reads
const shopeeOrderDetailFields = "package_list,shipping_carrier,total_amount,estimated_shipping_fee"

// ShopeeLogistics implements fulfillment.LogisticsAPI on top of a signed gateway
type ShopeeLogistics struct {
	gateway integration.Gateway
}

var _ fulfillment.LogisticsAPI = (*ShopeeLogistics)(nil)

// NewShopeeLogistics creates the logistics binding
func NewShopeeLogistics(gateway integration.Gateway) *ShopeeLogistics {
	return &ShopeeLogistics{gateway: gateway}
}

// GetShippingParameter queries what the platform needs to ship the order
func (s *ShopeeLogistics) GetShippingParameter(ctx context.Context, orderSn, packageNumber string) (*fulfillment.ShippingParameters, error) {
	params := map[string]any{"order_sn": orderSn}
	if packageNumber != "" {
		params["package_number"] = packageNumber
	}

	var payload ShopeeShippingParameter
	raw, err := s.callRaw(ctx, shopeePathGetShippingParameter, http.MethodGet, params, &payload)
	if err != nil {
		return nil, err
	}

	out := &fulfillment.ShippingParameters{
		InfoNeeded:    make(map[fulfillment.ShippingMode][]string, len(payload.InfoNeeded)),
		PackageNumber: packageNumber,
		Raw:           raw,
	}
	for mode, fields := range payload.InfoNeeded {
		out.InfoNeeded[fulfillment.ShippingMode(mode)] = fields
	}
	if payload.Pickup != nil {
		for _, a := range payload.Pickup.AddressList {
			out.PickupAddresses = append(out.PickupAddresses, convertShopeeAddress(a))
		}
	}
	if payload.Dropoff != nil {
		out.SenderRealName = payload.Dropoff.SenderRealName
		for _, b := range payload.Dropoff.BranchList {
			out.DropoffBranches = append(out.DropoffBranches, fulfillment.DropoffBranch{
				BranchID: b.BranchID,
				Region:   b.Region,
				State:    b.State,
				City:     b.City,
				Address:  b.Address,
				Zipcode:  b.Zipcode,
				District: b.District,
				Town:     b.Town,
			})
		}
	}
	return out, nil
}

// GetOrderDetail fetches the order with its package list
func (s *ShopeeLogistics) GetOrderDetail(ctx context.Context, orderSn string) (*fulfillment.OrderDetail, error) {
	params := map[string]any{
		"order_sn_list":            orderSn,
		"response_optional_fields": shopeeOrderDetailFields,
	}

	var payload ShopeeOrderDetail
	if err := s.call(ctx, shopeePathGetOrderDetail, http.MethodGet, params, &payload); err != nil {
		return nil, err
	}
	if len(payload.OrderList) == 0 {
		return nil, fmt.Errorf("shopee: order %s: %w", orderSn, fulfillment.ErrOrderNotFound)
	}

	o := payload.OrderList[0]
	detail := &fulfillment.OrderDetail{
		OrderSn:              o.OrderSn,
		Status:               o.OrderStatus,
		ShippingCarrier:      o.ShippingCarrier,
		TrackingNumber:       o.TrackingNo,
		Currency:             o.Currency,
		TotalAmount:          o.TotalAmount,
		EstimatedShippingFee: o.EstimatedShippingFee,
	}
	for _, p := range o.PackageList {
		detail.Packages = append(detail.Packages, fulfillment.PackageInfo{
			PackageNumber:   p.PackageNumber,
			LogisticsStatus: p.LogisticsStatus,
			ShippingCarrier: p.ShippingCarrier,
			TrackingNumber:  p.TrackingNumber,
		})
	}
	return detail, nil
}

// GetTrackingNumber returns the assigned tracking number, "" when not assigned yet
func (s *ShopeeLogistics) GetTrackingNumber(ctx context.Context, orderSn, packageNumber string) (string, error) {
	params := map[string]any{"order_sn": orderSn}
	if packageNumber != "" {
		params["package_number"] = packageNumber
	}

	var payload ShopeeTrackingNumber
	if err := s.call(ctx, shopeePathGetTrackingNumber, http.MethodGet, params, &payload); err != nil {
		return "", err
	}
	if payload.TrackingNumber != "" {
		return payload.TrackingNumber, nil
	}
	return payload.LastMileTrackingNumber, nil
}

// GetTrackingInfo fetches the logistics timeline
func (s *ShopeeLogistics) GetTrackingInfo(ctx context.Context, orderSn, packageNumber string) (*fulfillment.TrackingInfo, error) {
	params := map[string]any{"order_sn": orderSn}
	if packageNumber != "" {
		params["package_number"] = packageNumber
	}

	var payload ShopeeTrackingInfo
	if err := s.call(ctx, shopeePathGetTrackingInfo, http.MethodGet, params, &payload); err != nil {
		return nil, err
	}

	info := &fulfillment.TrackingInfo{
		OrderSn:         payload.OrderSn,
		PackageNumber:   payload.PackageNumber,
		LogisticsStatus: payload.LogisticsStatus,
		Events:          make([]fulfillment.TrackingEvent, 0, len(payload.TrackingInfo)),
	}
	for _, e := range payload.TrackingInfo {
		info.Events = append(info.Events, fulfillment.TrackingEvent{
			UpdateTime:      e.UpdateTime,
			Description:     e.Description,
			LogisticsStatus: e.LogisticsStatus,
		})
	}
	return info, nil
}

// GetAddressList fetches the shop's address book
func (s *ShopeeLogistics) GetAddressList(ctx context.Context) ([]fulfillment.Address, error) {
	var payload ShopeeAddressList
	if err := s.call(ctx, shopeePathGetAddressList, http.MethodGet, nil, &payload); err != nil {
		return nil, err
	}
	out := make([]fulfillment.Address, 0, len(payload.AddressList))
	for _, a := range payload.AddressList {
		out = append(out, convertShopeeAddress(a))
	}
	return out, nil
}

// ShipOrder submits the shipment. The call is never retried here.
func (s *ShopeeLogistics) ShipOrder(ctx context.Context, payload *fulfillment.ShipmentPayload) error {
	if payload == nil || payload.OrderSn == "" {
		return fulfillment.ErrValidation
	}

	params := map[string]any{"order_sn": payload.OrderSn}
	if payload.PackageNumber != "" {
		params["package_number"] = payload.PackageNumber
	}

	switch payload.Mode {
	case fulfillment.ShippingModePickup:
		if payload.Pickup == nil {
			return fulfillment.NewError(fulfillment.KindValidation, "pickup selection is required")
		}
		pickup := map[string]any{"address_id": payload.Pickup.Address.AddressID}
		if payload.Pickup.TimeSlot != nil {
			pickup["pickup_time_id"] = payload.Pickup.TimeSlot.PickupTimeID
		}
		params["pickup"] = pickup
	case fulfillment.ShippingModeDropoff:
		dropoff := map[string]any{}
		if payload.Dropoff != nil {
			if payload.Dropoff.Branch != nil {
				dropoff["branch_id"] = payload.Dropoff.Branch.BranchID
			}
			if payload.Dropoff.SenderRealName != "" {
				dropoff["sender_real_name"] = payload.Dropoff.SenderRealName
			}
		}
		params["dropoff"] = dropoff
	case fulfillment.ShippingModeNonIntegrated:
		params["non_integrated"] = map[string]any{}
	default:
		return fulfillment.NewError(fulfillment.KindValidation, "unsupported shipping mode")
	}

	return s.call(ctx, shopeePathShipOrder, http.MethodPost, params, nil)
}

// call issues the request and turns an error envelope into *fulfillment.RemoteError
func (s *ShopeeLogistics) call(ctx context.Context, path, method string, params map[string]any, out any) error {
	_, err := s.callRaw(ctx, path, method, params, out)
	return err
}

// callRaw is call that also hands back the raw body
func (s *ShopeeLogistics) callRaw(ctx context.Context, path, method string, params map[string]any, out any) (json.RawMessage, error) {
	resp, err := s.gateway.Call(ctx, &integration.GatewayRequest{Path: path, Method: method, Params: params})
	if err != nil {
		if errors.Is(err, integration.ErrPlatformAuthFailed) {
			return nil, fulfillment.WrapError(fulfillment.KindAuth, "platform access token missing", err)
		}
		return nil, fmt.Errorf("shopee %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return resp.Raw, &fulfillment.RemoteError{
			Code:      resp.Error,
			Message:   resp.Message,
			RequestID: resp.RequestID,
			Raw:       resp.Raw,
		}
	}
	if out == nil {
		return resp.Raw, nil
	}
	return resp.Raw, resp.Decode(out)
}

func convertShopeeAddress(a ShopeeAddress) fulfillment.Address {
	addr := fulfillment.Address{
		AddressID: a.AddressID,
		Region:    a.Region,
		State:     a.State,
		City:      a.City,
		District:  a.District,
		Town:      a.Town,
		Address:   a.Address,
		Zipcode:   a.Zipcode,
		Flags:     a.AddressFlag,
		Types:     a.AddressType,
	}
	for _, ts := range a.TimeSlotList {
		addr.TimeSlots = append(addr.TimeSlots, fulfillment.TimeSlot{
			PickupTimeID: ts.PickupTimeID,
			Date:         ts.Date,
			TimeText:     ts.TimeText,
			Flags:        ts.Flags,
		})
	}
	return addr
}
