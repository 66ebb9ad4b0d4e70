package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appfulfillment "github.com/sellerdesk/backend/internal/application/fulfillment"
	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
)

// FulfillmentService is the application surface the handler drives
type FulfillmentService interface {
	SubmitShipment(ctx context.Context, orderSn string, mode fulfillment.ShippingMode) (*appfulfillment.SubmitShipmentResult, error)
	GetPickupDetails(ctx context.Context, orderSn string, debug bool) (*appfulfillment.PickupDetailsResult, error)
}

// FulfillmentHandler handles shipment submission and pickup detail endpoints
type FulfillmentHandler struct {
	BaseHandler
	service FulfillmentService
}

// NewFulfillmentHandler creates a new FulfillmentHandler
func NewFulfillmentHandler(service FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{service: service}
}

// ShipOrderRequest is the body of a ship request
type ShipOrderRequest struct {
	Mode string `json:"mode" binding:"required,oneof=pickup dropoff"`
}

// RegisterRoutes mounts the fulfillment endpoints on rg
func (h *FulfillmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/fulfillment/orders/:" + middleware.OrderSnParam)
	orders.POST("/ship", h.ShipOrder)
	orders.GET("/pickup-details", h.GetPickupDetails)
}

// ShipOrder godoc
// @Summary      Arrange shipment of an order
// @Description  Resolve the pickup or dropoff payload, ship the order and resolve its tracking number
// @Tags         fulfillment
// @Accept       json
// @Produce      json
// @Param        order_sn path string true "Platform order sn"
// @Param        request body ShipOrderRequest true "Shipping mode"
// @Success      200 {object} dto.Response{data=appfulfillment.SubmitShipmentResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /fulfillment/orders/{order_sn}/ship [post]
func (h *FulfillmentHandler) ShipOrder(c *gin.Context) {
	orderSn := c.Param(middleware.OrderSnParam)

	var req ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ctx := logger.WithOrderSn(c.Request.Context(), orderSn)
	c.Request = c.Request.WithContext(ctx)
	result, err := h.service.SubmitShipment(ctx, orderSn, fulfillment.ShippingMode(req.Mode))
	if err != nil {
		logger.L(ctx).Warn("shipment submission failed",
			zap.String("mode", req.Mode),
			zap.String("kind", string(fulfillment.KindOf(err))),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetPickupDetails godoc
// @Summary      Get pickup details of an order
// @Description  Return tracking number, timeline and pickup details, served from the order store when available
// @Tags         fulfillment
// @Produce      json
// @Param        order_sn path string true "Platform order sn"
// @Param        debug query bool false "Include debug_logs naming the source of each value"
// @Success      200 {object} dto.Response{data=appfulfillment.PickupDetailsResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /fulfillment/orders/{order_sn}/pickup-details [get]
func (h *FulfillmentHandler) GetPickupDetails(c *gin.Context) {
	orderSn := c.Param(middleware.OrderSnParam)

	debug := false
	if raw := c.Query("debug"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "debug must be true or false")
			return
		}
		debug = parsed
	}

	ctx := logger.WithOrderSn(c.Request.Context(), orderSn)
	c.Request = c.Request.WithContext(ctx)
	result, err := h.service.GetPickupDetails(ctx, orderSn, debug)
	if err != nil {
		logger.L(ctx).Error("pickup detail lookup failed", zap.Error(err))
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

var _ FulfillmentService = (*appfulfillment.Service)(nil)
