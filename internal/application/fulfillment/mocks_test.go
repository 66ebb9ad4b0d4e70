package fulfillment

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// MockLogisticsAPI is a mock implementation of fulfillment.LogisticsAPI
type MockLogisticsAPI struct {
	mock.Mock
}

func (m *MockLogisticsAPI) GetShippingParameter(ctx context.Context, orderSn, packageNumber string) (*fulfillment.ShippingParameters, error) {
	args := m.Called(ctx, orderSn, packageNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.ShippingParameters), args.Error(1)
}

func (m *MockLogisticsAPI) GetOrderDetail(ctx context.Context, orderSn string) (*fulfillment.OrderDetail, error) {
	args := m.Called(ctx, orderSn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.OrderDetail), args.Error(1)
}

func (m *MockLogisticsAPI) GetTrackingNumber(ctx context.Context, orderSn, packageNumber string) (string, error) {
	args := m.Called(ctx, orderSn, packageNumber)
	return args.String(0), args.Error(1)
}

func (m *MockLogisticsAPI) GetTrackingInfo(ctx context.Context, orderSn, packageNumber string) (*fulfillment.TrackingInfo, error) {
	args := m.Called(ctx, orderSn, packageNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.TrackingInfo), args.Error(1)
}

func (m *MockLogisticsAPI) GetAddressList(ctx context.Context) ([]fulfillment.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Address), args.Error(1)
}

func (m *MockLogisticsAPI) ShipOrder(ctx context.Context, payload *fulfillment.ShipmentPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of fulfillment.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindBySn(ctx context.Context, orderSn string) (*fulfillment.Order, error) {
	args := m.Called(ctx, orderSn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) MergeFacts(ctx context.Context, orderSn string, patch fulfillment.TrackingFacts) (*fulfillment.Order, error) {
	args := m.Called(ctx, orderSn, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderSn string, status fulfillment.OrderStatus) error {
	args := m.Called(ctx, orderSn, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Upsert(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockShipmentGuard is a mock implementation of fulfillment.ShipmentGuard
type MockShipmentGuard struct {
	mock.Mock
}

func (m *MockShipmentGuard) Acquire(ctx context.Context, orderSn string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, orderSn, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockShipmentGuard) Release(ctx context.Context, orderSn string) error {
	args := m.Called(ctx, orderSn)
	return args.Error(0)
}

// memoryOrderRepository is a map backed store applying the domain merge rules
type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*fulfillment.Order
	writes int
}

func newMemoryOrderRepository(orders ...*fulfillment.Order) *memoryOrderRepository {
	r := &memoryOrderRepository{orders: make(map[string]*fulfillment.Order)}
	for _, o := range orders {
		r.orders[o.OrderSn] = o
	}
	return r
}

func (r *memoryOrderRepository) FindBySn(_ context.Context, orderSn string) (*fulfillment.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderSn]
	if !ok {
		return nil, fulfillment.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memoryOrderRepository) MergeFacts(_ context.Context, orderSn string, patch fulfillment.TrackingFacts) (*fulfillment.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderSn]
	if !ok {
		return nil, fulfillment.ErrOrderNotFound
	}
	if o.ApplyFacts(patch) {
		r.writes++
	}
	cp := *o
	return &cp, nil
}

func (r *memoryOrderRepository) UpdateStatus(_ context.Context, orderSn string, status fulfillment.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderSn]
	if !ok {
		return fulfillment.ErrOrderNotFound
	}
	_, err := o.SyncStatus(status)
	return err
}

func (r *memoryOrderRepository) Upsert(_ context.Context, order *fulfillment.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.OrderSn] = order
	return nil
}

func (r *memoryOrderRepository) get(orderSn string) *fulfillment.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[orderSn]
}

// noWait replaces the tracking backoff and counts how often it was used
type noWait struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (w *noWait) wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.calls = append(w.calls, d)
	w.mu.Unlock()
	return ctx.Err()
}

func remoteErr(code, message string) *fulfillment.RemoteError {
	return &fulfillment.RemoteError{Code: code, Message: message, Raw: []byte(`{"error":"` + code + `"}`)}
}

func mustOrder(orderSn string, status fulfillment.OrderStatus) *fulfillment.Order {
	o, err := fulfillment.NewOrder(orderSn, status)
	if err != nil {
		panic(err)
	}
	return o
}
