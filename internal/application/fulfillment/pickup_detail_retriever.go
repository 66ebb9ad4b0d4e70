package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

// PickupDetailRetriever serves the fulfillment view of an order, from the store
// when possible and otherwise rebuilt from whatever the platform still answers.
// It only fails on invalid input.
type PickupDetailRetriever struct {
	api            fulfillment.LogisticsAPI
	repo           fulfillment.OrderRepository
	splitOrders    *SplitOrderDetector
	reconciler     *ReconciliationWriter
	defaultCarrier string
	metrics        Metrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewPickupDetailRetriever creates a new PickupDetailRetriever
func NewPickupDetailRetriever(
	api fulfillment.LogisticsAPI,
	repo fulfillment.OrderRepository,
	splitOrders *SplitOrderDetector,
	reconciler *ReconciliationWriter,
	cfg Config,
	metrics Metrics,
	logger *zap.Logger,
) *PickupDetailRetriever {
	cfg = cfg.withDefaults()
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PickupDetailRetriever{
		api:            api,
		repo:           repo,
		splitOrders:    splitOrders,
		reconciler:     reconciler,
		defaultCarrier: cfg.DefaultCarrier,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
	}
}

// debugTrail collects human readable notes on where values came from
type debugTrail struct {
	enabled bool
	mu      sync.Mutex
	lines   []string
}

func (d *debugTrail) addf(format string, args ...any) {
	if !d.enabled {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = append(d.lines, fmt.Sprintf(format, args...))
}

func (d *debugTrail) logs() []string {
	if !d.enabled {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// orderLookup is what the order detail and tracking number lookups discovered
type orderLookup struct {
	detail         *fulfillment.OrderDetail
	trackingNumber string
	trackingSource string
	packageNumber  string
	carrier        string
}

// Retrieve returns the pickup details of orderSn
func (p *PickupDetailRetriever) Retrieve(ctx context.Context, orderSn string, debug bool) (*PickupDetailsResult, error) {
	if orderSn == "" {
		return nil, fulfillment.NewError(fulfillment.KindValidation, "order sn is required")
	}
	trail := &debugTrail{enabled: debug}

	order, err := p.repo.FindBySn(ctx, orderSn)
	if err != nil {
		if !errors.Is(err, fulfillment.ErrOrderNotFound) {
			p.logger.Warn("order store lookup failed", zap.String("order_sn", orderSn), zap.Error(err))
		}
		trail.addf("order store: no usable record (%v)", err)
		order = nil
	}

	var facts fulfillment.TrackingFacts
	if order != nil {
		facts = order.Facts
	}

	lookup, timeline, err := p.collect(ctx, orderSn, facts, trail)
	if err != nil {
		p.logger.Warn("pickup detail lookups failed", zap.String("order_sn", orderSn), zap.Error(err))
	}

	result := &PickupDetailsResult{
		OrderSn:          orderSn,
		TrackingNumber:   firstNonEmpty(facts.TrackingNumber, lookup.trackingNumber),
		PackageNumber:    firstNonEmpty(facts.PackageNumber, lookup.packageNumber),
		TrackingTimeline: timeline.SortedEvents(),
	}
	if timeline != nil {
		result.LogisticsStatus = timeline.LogisticsStatus
	}
	if lookup.detail != nil {
		fee := lookup.detail.EstimatedShippingFee
		result.EstimatedShippingFee = &fee
	}

	carrier := firstNonEmpty(facts.ShippingCarrier, lookup.carrier)
	patch := fulfillment.TrackingFacts{
		TrackingNumber:  lookup.trackingNumber,
		PackageNumber:   lookup.packageNumber,
		ShippingCarrier: lookup.carrier,
	}

	if order.HasPickupDetails() {
		trail.addf("pickup details served from order store")
		result.PickupInfo = facts.PickupDetails
		result.ShippingChannel = p.channel(facts.PickupDetails.ShippingChannel, carrier)
		result.Source = PickupSourceCache
	} else {
		result.ShippingChannel = p.channel(carrier)
		pickup, source, pkg := p.reconstructPickup(ctx, orderSn, result.ShippingChannel, trail)
		result.PickupInfo = pickup
		result.Source = source
		if result.PackageNumber == "" {
			result.PackageNumber = pkg
		}
		patch.PackageNumber = firstNonEmpty(patch.PackageNumber, pkg)
		if source != PickupSourcePlaceholder {
			patch.PickupDetails = pickup
		}
	}
	p.metrics.RecordPickupSource(ctx, string(result.Source))

	p.reconciler.Record(ctx, orderSn, patch)

	result.DebugLogs = trail.logs()
	return result, nil
}

// collect runs the tracking number and timeline lookups concurrently.
// Both are best-effort; a failure only leaves its part empty.
func (p *PickupDetailRetriever) collect(ctx context.Context, orderSn string, facts fulfillment.TrackingFacts, trail *debugTrail) (orderLookup, *fulfillment.TrackingInfo, error) {
	var (
		lookup   orderLookup
		timeline *fulfillment.TrackingInfo
		g        errgroup.Group
	)
	if facts.TrackingNumber == "" {
		g.Go(func() error {
			lookup = p.lookupOrder(ctx, orderSn, facts.PackageNumber, trail)
			return nil
		})
	} else {
		trail.addf("tracking number served from order store")
	}
	g.Go(func() error {
		info, err := p.api.GetTrackingInfo(ctx, orderSn, facts.PackageNumber)
		if err != nil {
			p.logger.Debug("tracking timeline lookup failed", zap.String("order_sn", orderSn), zap.Error(err))
			trail.addf("tracking timeline unavailable: %v", err)
			return nil
		}
		timeline = info
		trail.addf("tracking timeline: %d events", len(info.Events))
		return nil
	})
	if err := g.Wait(); err != nil {
		return orderLookup{}, nil, err
	}
	return lookup, timeline, nil
}

// lookupOrder runs the order detail lookup followed by the tracking number
// lookup. Each is best-effort.
func (p *PickupDetailRetriever) lookupOrder(ctx context.Context, orderSn, knownPackage string, trail *debugTrail) orderLookup {
	var out orderLookup
	pkg := knownPackage

	detail, err := p.api.GetOrderDetail(ctx, orderSn)
	if err != nil {
		p.logger.Debug("order detail lookup failed", zap.String("order_sn", orderSn), zap.Error(err))
		trail.addf("order detail unavailable: %v", err)
	} else {
		out.detail = detail
		out.carrier = detail.Carrier()
		if pkg == "" {
			pkg = detail.FirstPackageNumber()
			out.packageNumber = pkg
		}
		if tn := detail.KnownTrackingNumber(); tn != "" {
			out.trackingNumber = tn
			out.trackingSource = "order_detail"
		}
	}

	tn, err := p.api.GetTrackingNumber(ctx, orderSn, pkg)
	switch {
	case err != nil:
		p.logger.Debug("tracking number lookup failed", zap.String("order_sn", orderSn), zap.Error(err))
		trail.addf("tracking number lookup failed: %v", err)
	case tn != "":
		out.trackingNumber = tn
		out.trackingSource = "tracking_number"
	}

	if out.trackingNumber != "" {
		trail.addf("tracking number from %s", out.trackingSource)
	}
	return out
}

// reconstructPickup walks the fallback chain for pickup details and returns
// them with their source and any package number discovered on the way.
func (p *PickupDetailRetriever) reconstructPickup(ctx context.Context, orderSn, channel string, trail *debugTrail) (*fulfillment.PickupDetails, PickupSource, string) {
	var pkg string

	params, err := p.splitOrders.FetchShippingParameters(ctx, orderSn)
	switch {
	case err != nil:
		trail.addf("shipping parameter unavailable: %v", err)
	case len(params.PickupAddresses) == 0:
		pkg = params.PackageNumber
		trail.addf("shipping parameter returned no pickup address")
	default:
		pkg = params.PackageNumber
		address := params.PickupAddresses[0]
		selection := &fulfillment.PickupSelection{
			Address:         address,
			TimeSlot:        fulfillment.SelectTimeSlot(address.TimeSlots, p.now()),
			ShippingChannel: channel,
		}
		trail.addf("pickup details from shipping parameter (address %d)", address.AddressID)
		return selection.ToDetails(), PickupSourceShippingParameter, pkg
	}

	addresses, err := p.api.GetAddressList(ctx)
	if err != nil {
		p.logger.Debug("address list lookup failed", zap.String("order_sn", orderSn), zap.Error(err))
		trail.addf("address list unavailable: %v", err)
	} else if address := fulfillment.SelectPickupAddress(addresses); address != nil {
		selection := &fulfillment.PickupSelection{Address: *address, ShippingChannel: channel}
		trail.addf("pickup details from address list (address %d)", address.AddressID)
		return selection.ToDetails(), PickupSourceAddressList, pkg
	} else {
		trail.addf("address list is empty")
	}

	trail.addf("no pickup source available, returning placeholder")
	return &fulfillment.PickupDetails{ShippingChannel: channel}, PickupSourcePlaceholder, pkg
}

// channel returns the first non-empty label or the default carrier
func (p *PickupDetailRetriever) channel(labels ...string) string {
	if c := firstNonEmpty(labels...); c != "" {
		return c
	}
	return p.defaultCarrier
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
