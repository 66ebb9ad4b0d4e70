package fulfillment

import (
	"context"
	"time"
)

// LogisticsAPI is the port for the platform endpoints the fulfillment flow uses.
// Business failures are returned as *RemoteError; anything else is a transport failure.
type LogisticsAPI interface {
	GetShippingParameter(ctx context.Context, orderSn, packageNumber string) (*ShippingParameters, error)
	GetOrderDetail(ctx context.Context, orderSn string) (*OrderDetail, error)
	GetTrackingNumber(ctx context.Context, orderSn, packageNumber string) (string, error)
	GetTrackingInfo(ctx context.Context, orderSn, packageNumber string) (*TrackingInfo, error)
	GetAddressList(ctx context.Context) ([]Address, error)
	ShipOrder(ctx context.Context, payload *ShipmentPayload) error
}

// OrderRepository is the port for the persistent order store
type OrderRepository interface {
	// FindBySn returns ErrOrderNotFound when no record exists
	FindBySn(ctx context.Context, orderSn string) (*Order, error)
	// MergeFacts applies ApplyFacts under a row lock and returns the stored order
	MergeFacts(ctx context.Context, orderSn string, patch TrackingFacts) (*Order, error)
	// UpdateStatus overwrites the status, leaving facts untouched
	UpdateStatus(ctx context.Context, orderSn string, status OrderStatus) error
	// Upsert inserts or refreshes an order from the ingestion pipeline without touching facts
	Upsert(ctx context.Context, order *Order) error
}

// ShipmentGuard prevents two submissions for the same order running at once
type ShipmentGuard interface {
	// Acquire returns false when another submission holds the order
	Acquire(ctx context.Context, orderSn string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, orderSn string) error
}
