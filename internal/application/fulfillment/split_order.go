package fulfillment

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
)

var errNoPackages = errors.New("fulfillment: order has no packages")

// SplitOrderDetector resolves the package number of split orders
type SplitOrderDetector struct {
	api    fulfillment.LogisticsAPI
	logger *zap.Logger
}

// NewSplitOrderDetector creates a new SplitOrderDetector
func NewSplitOrderDetector(api fulfillment.LogisticsAPI, logger *zap.Logger) *SplitOrderDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SplitOrderDetector{api: api, logger: logger}
}

// ResolvePackageNumber returns the first package number listed on the order
func (d *SplitOrderDetector) ResolvePackageNumber(ctx context.Context, orderSn string) (string, error) {
	detail, err := d.api.GetOrderDetail(ctx, orderSn)
	if err != nil {
		return "", err
	}
	pkg := detail.FirstPackageNumber()
	if pkg == "" {
		return "", errNoPackages
	}
	return pkg, nil
}

// FetchShippingParameters queries the shipping parameters of an order. When the
// platform answers that a package number is required, the first package number
// is looked up and the query is repeated exactly once with it attached.
func (d *SplitOrderDetector) FetchShippingParameters(ctx context.Context, orderSn string) (*fulfillment.ShippingParameters, error) {
	params, err := d.api.GetShippingParameter(ctx, orderSn, "")
	if err == nil {
		return params, nil
	}
	if fulfillment.ClassifyError(err) != fulfillment.OutcomePackageRequired {
		return nil, err
	}

	pkg, lookupErr := d.ResolvePackageNumber(ctx, orderSn)
	if lookupErr != nil {
		d.logger.Warn("split order package lookup failed",
			zap.String("order_sn", orderSn),
			zap.Error(lookupErr),
		)
		return nil, err
	}

	d.logger.Debug("retrying shipping parameter with package number",
		zap.String("order_sn", orderSn),
		zap.String("package_number", pkg),
	)

	params, err = d.api.GetShippingParameter(ctx, orderSn, pkg)
	if err != nil {
		if fulfillment.ClassifyError(err) == fulfillment.OutcomePackageRequired {
			remote, _ := fulfillment.AsRemoteError(err)
			return nil, fulfillment.NewRemoteError(fulfillment.KindRemoteBusiness,
				"platform still requires a package number after split order retry", remote)
		}
		return nil, err
	}
	params.PackageNumber = pkg
	return params, nil
}
