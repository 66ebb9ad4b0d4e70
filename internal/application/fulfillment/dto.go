package fulfillment

import (
	"github.com/shopspring/decimal"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// PickupSource names where the pickup details in a response came from
type PickupSource string

const (
	PickupSourceCache             PickupSource = "cache"
	PickupSourceShippingParameter PickupSource = "shipping_parameter"
	PickupSourceAddressList       PickupSource = "address_list"
	PickupSourcePlaceholder       PickupSource = "placeholder"
)

// SubmitShipmentResult is returned after a successful submission
type SubmitShipmentResult struct {
	OrderSn         string                        `json:"order_sn"`
	ShippingMode    fulfillment.ShippingMode      `json:"shipping_mode"`
	TrackingNumber  string                        `json:"tracking_number"`
	PackageNumber   string                        `json:"package_number"`
	ShippingChannel string                        `json:"shipping_channel"`
	PickupInfo      *fulfillment.PickupDetails    `json:"pickup_info,omitempty"`
	DropoffInfo     *fulfillment.DropoffSelection `json:"dropoff_info,omitempty"`
	Attempts        int                           `json:"attempts"`
}

// PickupDetailsResult is the fulfillment view of an order
type PickupDetailsResult struct {
	OrderSn              string                      `json:"order_sn"`
	TrackingNumber       string                      `json:"tracking_number"`
	ShippingChannel      string                      `json:"shipping_channel"`
	PackageNumber        string                      `json:"package_number"`
	PickupInfo           *fulfillment.PickupDetails  `json:"pickup_info"`
	TrackingTimeline     []fulfillment.TrackingEvent `json:"tracking_timeline"`
	LogisticsStatus      string                      `json:"logistics_status,omitempty"`
	EstimatedShippingFee *decimal.Decimal            `json:"estimated_shipping_fee,omitempty"`
	Source               PickupSource                `json:"source"`
	DebugLogs            []string                    `json:"debug_logs,omitempty"`
}
