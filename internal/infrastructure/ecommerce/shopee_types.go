package ecommerce

import (
	"github.com/shopspring/decimal"
)

// Shopee logistics endpoints used by the fulfillment flow
const (
	shopeePathGetShippingParameter = "/api/v2/logistics/get_shipping_parameter"
	shopeePathGetOrderDetail       = "/api/v2/order/get_order_detail"
	shopeePathGetTrackingNumber    = "/api/v2/logistics/get_tracking_number"
	shopeePathGetTrackingInfo      = "/api/v2/logistics/get_tracking_info"
	shopeePathGetAddressList       = "/api/v2/logistics/get_address_list"
	shopeePathShipOrder            = "/api/v2/logistics/ship_order"
)

// ShopeeTimeSlot is a pickup window in get_shipping_parameter
type ShopeeTimeSlot struct {
	Date         int64    `json:"date"`
	TimeText     string   `json:"time_text"`
	PickupTimeID string   `json:"pickup_time_id"`
	Flags        []string `json:"flags"`
}

// ShopeeAddress is a seller address
type ShopeeAddress struct {
	AddressID    int64            `json:"address_id"`
	Region       string           `json:"region"`
	State        string           `json:"state"`
	City         string           `json:"city"`
	District     string           `json:"district"`
	Town         string           `json:"town"`
	Address      string           `json:"address"`
	Zipcode      string           `json:"zipcode"`
	AddressFlag  []string         `json:"address_flag"`
	AddressType  []string         `json:"address_type"`
	TimeSlotList []ShopeeTimeSlot `json:"time_slot_list"`
}

// ShopeeBranch is a dropoff branch
type ShopeeBranch struct {
	BranchID int64  `json:"branch_id"`
	Region   string `json:"region"`
	State    string `json:"state"`
	City     string `json:"city"`
	Address  string `json:"address"`
	Zipcode  string `json:"zipcode"`
	District string `json:"district"`
	Town     string `json:"town"`
}

// ShopeeShippingParameter is the get_shipping_parameter payload
type ShopeeShippingParameter struct {
	InfoNeeded map[string][]string `json:"info_needed"`
	Dropoff    *struct {
		BranchList     []ShopeeBranch `json:"branch_list"`
		SenderRealName string         `json:"sender_real_name"`
	} `json:"dropoff"`
	Pickup *struct {
		AddressList []ShopeeAddress `json:"address_list"`
	} `json:"pickup"`
}

// ShopeePackage is one entry of package_list in get_order_detail
type ShopeePackage struct {
	PackageNumber   string `json:"package_number"`
	LogisticsStatus string `json:"logistics_status"`
	ShippingCarrier string `json:"shipping_carrier"`
	TrackingNumber  string `json:"tracking_number"`
}

// ShopeeOrder is one entry of order_list in get_order_detail
type ShopeeOrder struct {
	OrderSn              string          `json:"order_sn"`
	OrderStatus          string          `json:"order_status"`
	ShippingCarrier      string          `json:"shipping_carrier"`
	TrackingNo           string          `json:"tracking_no"`
	Currency             string          `json:"currency"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	EstimatedShippingFee decimal.Decimal `json:"estimated_shipping_fee"`
	PackageList          []ShopeePackage `json:"package_list"`
}

// ShopeeOrderDetail is the get_order_detail payload
type ShopeeOrderDetail struct {
	OrderList []ShopeeOrder `json:"order_list"`
}

// ShopeeTrackingNumber is the get_tracking_number payload
type ShopeeTrackingNumber struct {
	TrackingNumber          string `json:"tracking_number"`
	PlpNumber               string `json:"plp_number"`
	FirstMileTrackingNumber string `json:"first_mile_tracking_number"`
	LastMileTrackingNumber  string `json:"last_mile_tracking_number"`
}

// ShopeeTrackingEvent is one entry of tracking_info
type ShopeeTrackingEvent struct {
	UpdateTime      int64  `json:"update_time"`
	Description     string `json:"description"`
	LogisticsStatus string `json:"logistics_status"`
}

// ShopeeTrackingInfo is the get_tracking_info payload
type ShopeeTrackingInfo struct {
	OrderSn         string                `json:"order_sn"`
	PackageNumber   string                `json:"package_number"`
	LogisticsStatus string                `json:"logistics_status"`
	TrackingInfo    []ShopeeTrackingEvent `json:"tracking_info"`
}

// ShopeeAddressList is the get_address_list payload
type ShopeeAddressList struct {
	ShowPickupAddress bool            `json:"show_pickup_address"`
	AddressList       []ShopeeAddress `json:"address_list"`
}
