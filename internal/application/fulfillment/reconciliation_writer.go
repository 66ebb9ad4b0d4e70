package fulfillment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// ReconciliationWriter folds newly observed facts into the order store.
// Writes are best-effort: failures are logged and never reach the caller.
type ReconciliationWriter struct {
	repo   fulfillment.OrderRepository
	api    fulfillment.LogisticsAPI
	logger *zap.Logger
}

// NewReconciliationWriter creates a new ReconciliationWriter
func NewReconciliationWriter(repo fulfillment.OrderRepository, api fulfillment.LogisticsAPI, logger *zap.Logger) *ReconciliationWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationWriter{repo: repo, api: api, logger: logger}
}

// Record merges patch into the stored facts and returns the stored order,
// or nil if nothing could be written.
func (w *ReconciliationWriter) Record(ctx context.Context, orderSn string, patch fulfillment.TrackingFacts) *fulfillment.Order {
	if orderSn == "" || patch.IsEmpty() {
		return nil
	}

	order, err := w.repo.MergeFacts(ctx, orderSn, patch)
	if err != nil {
		if errors.Is(err, fulfillment.ErrOrderNotFound) {
			w.logger.Debug("no local order to reconcile", zap.String("order_sn", orderSn))
		} else {
			w.logger.Warn("failed to reconcile order facts",
				zap.String("order_sn", orderSn),
				zap.Error(err),
			)
		}
		return nil
	}

	w.logger.Debug("order facts reconciled",
		zap.String("order_sn", orderSn),
		zap.String("status", order.Status.String()),
		zap.String("tracking_number", order.Facts.TrackingNumber),
	)
	return order
}

// ResyncStatus copies the platform order status into the store
func (w *ReconciliationWriter) ResyncStatus(ctx context.Context, orderSn string) {
	detail, err := w.api.GetOrderDetail(ctx, orderSn)
	if err != nil {
		w.logger.Warn("status resync lookup failed", zap.String("order_sn", orderSn), zap.Error(err))
		return
	}
	status, err := fulfillment.ParseOrderStatus(detail.Status)
	if err != nil {
		w.logger.Warn("status resync got unknown status",
			zap.String("order_sn", orderSn),
			zap.String("status", detail.Status),
		)
		return
	}
	if err := w.repo.UpdateStatus(ctx, orderSn, status); err != nil && !errors.Is(err, fulfillment.ErrOrderNotFound) {
		w.logger.Warn("status resync write failed", zap.String("order_sn", orderSn), zap.Error(err))
	}
}
