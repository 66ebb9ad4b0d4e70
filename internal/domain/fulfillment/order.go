package fulfillment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order store errors
var (
	ErrOrderNotFound     = errors.New("fulfillment: order not found")
	ErrOrderSnRequired   = errors.New("fulfillment: order sn is required")
	ErrOrderInvalidState = errors.New("fulfillment: invalid order status")
)

// OrderStatus mirrors the platform order status, plus the local pre-sync state
type OrderStatus string

const (
	OrderStatusUnprocessed      OrderStatus = "UNPROCESSED"
	OrderStatusUnpaid           OrderStatus = "UNPAID"
	OrderStatusReadyToShip      OrderStatus = "READY_TO_SHIP"
	OrderStatusProcessed        OrderStatus = "PROCESSED"
	OrderStatusRetryShip        OrderStatus = "RETRY_SHIP"
	OrderStatusShipped          OrderStatus = "SHIPPED"
	OrderStatusToConfirmReceive OrderStatus = "TO_CONFIRM_RECEIVE"
	OrderStatusInCancel         OrderStatus = "IN_CANCEL"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
	OrderStatusToReturn         OrderStatus = "TO_RETURN"
	OrderStatusCompleted        OrderStatus = "COMPLETED"
)

var knownStatuses = map[OrderStatus]struct{}{
	OrderStatusUnprocessed:      {},
	OrderStatusUnpaid:           {},
	OrderStatusReadyToShip:      {},
	OrderStatusProcessed:        {},
	OrderStatusRetryShip:        {},
	OrderStatusShipped:          {},
	OrderStatusToConfirmReceive: {},
	OrderStatusInCancel:         {},
	OrderStatusCancelled:        {},
	OrderStatusToReturn:         {},
	OrderStatusCompleted:        {},
}

// ParseOrderStatus normalizes a platform status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownStatuses[status]; !ok {
		return "", ErrOrderInvalidState
	}
	return status, nil
}

// IsValid returns true if the status is one the platform reports
func (s OrderStatus) IsValid() bool {
	_, ok := knownStatuses[s]
	return ok
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// PickupDetails is the persisted form of a pickup selection
type PickupDetails struct {
	Address         *Address  `json:"address"`
	TimeSlot        *TimeSlot `json:"time_slot"`
	ShippingChannel string    `json:"shipping_channel"`
}

// IsEmpty reports whether nothing worth persisting was captured
func (p *PickupDetails) IsEmpty() bool {
	return p == nil || (p.Address == nil && p.TimeSlot == nil)
}

// TrackingFacts holds the fulfillment facts observed for an order.
// Each field is written at most once: the first non-empty value wins.
type TrackingFacts struct {
	TrackingNumber  string         `json:"tracking_number,omitempty"`
	PackageNumber   string         `json:"package_number,omitempty"`
	ShippingCarrier string         `json:"shipping_carrier,omitempty"`
	PickupDetails   *PickupDetails `json:"pickup_details,omitempty"`
}

// IsEmpty reports whether the patch carries no facts
func (f TrackingFacts) IsEmpty() bool {
	return f.TrackingNumber == "" && f.PackageNumber == "" &&
		f.ShippingCarrier == "" && f.PickupDetails.IsEmpty()
}

// Merge fills the empty fields of f from patch and reports whether anything changed.
// Non-empty fields are never overwritten.
func (f TrackingFacts) Merge(patch TrackingFacts) (TrackingFacts, bool) {
	changed := false
	if f.TrackingNumber == "" && patch.TrackingNumber != "" {
		f.TrackingNumber = patch.TrackingNumber
		changed = true
	}
	if f.PackageNumber == "" && patch.PackageNumber != "" {
		f.PackageNumber = patch.PackageNumber
		changed = true
	}
	if f.ShippingCarrier == "" && patch.ShippingCarrier != "" {
		f.ShippingCarrier = patch.ShippingCarrier
		changed = true
	}
	if f.PickupDetails.IsEmpty() && !patch.PickupDetails.IsEmpty() {
		pd := *patch.PickupDetails
		f.PickupDetails = &pd
		changed = true
	}
	return f, changed
}

// Order is the locally cached view of a platform order
type Order struct {
	ID        uuid.UUID
	OrderSn   string
	Status    OrderStatus
	Facts     TrackingFacts
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates an order as the ingestion pipeline first sees it
func NewOrder(orderSn string, status OrderStatus) (*Order, error) {
	orderSn = strings.TrimSpace(orderSn)
	if orderSn == "" {
		return nil, ErrOrderSnRequired
	}
	if status == "" {
		status = OrderStatusUnprocessed
	}
	if !status.IsValid() {
		return nil, ErrOrderInvalidState
	}
	now := time.Now()
	return &Order{
		ID:        uuid.New(),
		OrderSn:   orderSn,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyFacts merges patch into the order facts and advances the status.
// READY_TO_SHIP moves to PROCESSED once a tracking number is known.
// Returns true if the order changed.
func (o *Order) ApplyFacts(patch TrackingFacts) bool {
	merged, changed := o.Facts.Merge(patch)
	o.Facts = merged
	if o.Status == OrderStatusReadyToShip && o.Facts.TrackingNumber != "" {
		o.Status = OrderStatusProcessed
		changed = true
	}
	if changed {
		o.UpdatedAt = time.Now()
	}
	return changed
}

// SyncStatus overwrites the status with the one observed on the platform.
// Facts are left untouched.
func (o *Order) SyncStatus(status OrderStatus) (bool, error) {
	if !status.IsValid() {
		return false, ErrOrderInvalidState
	}
	if o.Status == status {
		return false, nil
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return true, nil
}

// HasPickupDetails reports whether pickup details were already persisted
func (o *Order) HasPickupDetails() bool {
	return o != nil && !o.Facts.PickupDetails.IsEmpty()
}
