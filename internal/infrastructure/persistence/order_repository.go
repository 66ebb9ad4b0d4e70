package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements fulfillment.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)

// FindBySn finds an order by its platform order sn
func (r *GormOrderRepository) FindBySn(ctx context.Context, orderSn string) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("order_sn = ?", orderSn).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fulfillment.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// MergeFacts merges patch into the stored facts under a row lock.
// A patch that changes nothing issues no write.
func (r *GormOrderRepository) MergeFacts(ctx context.Context, orderSn string, patch fulfillment.TrackingFacts) (*fulfillment.Order, error) {
	var merged *fulfillment.Order
	err := r.withLockedOrder(ctx, orderSn, func(order *fulfillment.Order) (bool, error) {
		merged = order
		return order.ApplyFacts(patch), nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// UpdateStatus overwrites the order status, leaving facts untouched.
// An unchanged status issues no write.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderSn string, status fulfillment.OrderStatus) error {
	if !status.IsValid() {
		return fulfillment.ErrOrderInvalidState
	}
	return r.withLockedOrder(ctx, orderSn, func(order *fulfillment.Order) (bool, error) {
		return order.SyncStatus(status)
	})
}

// withLockedOrder loads the row FOR UPDATE, lets mutate change the domain
// order, and saves it back when mutate reports a change.
func (r *GormOrderRepository) withLockedOrder(ctx context.Context, orderSn string, mutate func(*fulfillment.Order) (bool, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_sn = ?", orderSn).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fulfillment.ErrOrderNotFound
			}
			return err
		}

		order, err := model.ToDomain()
		if err != nil {
			return err
		}
		changed, err := mutate(order)
		if err != nil || !changed {
			return err
		}
		if err := model.FromDomain(order); err != nil {
			return err
		}
		return tx.Save(&model).Error
	})
}

// Upsert inserts the order or refreshes the status of an existing one.
// Stored facts are never touched.
func (r *GormOrderRepository) Upsert(ctx context.Context, order *fulfillment.Order) error {
	if order == nil || strings.TrimSpace(order.OrderSn) == "" {
		return fulfillment.ErrOrderSnRequired
	}
	if !order.Status.IsValid() {
		return fulfillment.ErrOrderInvalidState
	}
	model, err := models.OrderModelFromDomain(order)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_sn"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("upsert order %s: %w", order.OrderSn, err)
	}
	return nil
}
