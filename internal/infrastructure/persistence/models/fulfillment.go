package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// OrderModel is the persistence model for the fulfillment Order aggregate.
// Tracking facts are flattened into columns; pickup details are stored as JSON.
type OrderModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderSn           string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_fulfillment_orders_order_sn"`
	Status            string    `gorm:"type:varchar(32);not null;index"`
	TrackingNumber    string    `gorm:"type:varchar(100);not null;default:''"`
	PackageNumber     string    `gorm:"type:varchar(100);not null;default:''"`
	ShippingCarrier   string    `gorm:"type:varchar(100);not null;default:''"`
	PickupDetailsJSON *string   `gorm:"type:jsonb;column:pickup_details"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "fulfillment_orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() (*fulfillment.Order, error) {
	order := &fulfillment.Order{
		ID:      m.ID,
		OrderSn: m.OrderSn,
		Status:  fulfillment.OrderStatus(m.Status),
		Facts: fulfillment.TrackingFacts{
			TrackingNumber:  m.TrackingNumber,
			PackageNumber:   m.PackageNumber,
			ShippingCarrier: m.ShippingCarrier,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.PickupDetailsJSON != nil && *m.PickupDetailsJSON != "" {
		var pd fulfillment.PickupDetails
		if err := json.Unmarshal([]byte(*m.PickupDetailsJSON), &pd); err != nil {
			return nil, fmt.Errorf("decode pickup details for %s: %w", m.OrderSn, err)
		}
		order.Facts.PickupDetails = &pd
	}
	return order, nil
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *fulfillment.Order) error {
	m.ID = o.ID
	m.OrderSn = o.OrderSn
	m.Status = o.Status.String()
	m.TrackingNumber = o.Facts.TrackingNumber
	m.PackageNumber = o.Facts.PackageNumber
	m.ShippingCarrier = o.Facts.ShippingCarrier
	m.PickupDetailsJSON = nil
	if !o.Facts.PickupDetails.IsEmpty() {
		raw, err := json.Marshal(o.Facts.PickupDetails)
		if err != nil {
			return fmt.Errorf("encode pickup details for %s: %w", o.OrderSn, err)
		}
		s := string(raw)
		m.PickupDetailsJSON = &s
	}
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	return nil
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *fulfillment.Order) (*OrderModel, error) {
	m := &OrderModel{}
	if err := m.FromDomain(o); err != nil {
		return nil, err
	}
	return m, nil
}
