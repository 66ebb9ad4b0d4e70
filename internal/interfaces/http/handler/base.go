package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sellerdesk/backend/internal/domain/fulfillment"
	"github.com/sellerdesk/backend/internal/interfaces/http/dto"
	"github.com/sellerdesk/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// kindCodes maps fulfillment error kinds to API error codes
var kindCodes = map[fulfillment.ErrorKind]string{
	fulfillment.KindAuth:            dto.ErrCodeUnauthorized,
	fulfillment.KindValidation:      dto.ErrCodeValidation,
	fulfillment.KindModeUnavailable: dto.ErrCodeModeUnavailable,
	fulfillment.KindNoPickupAddress: dto.ErrCodeNoPickupAddress,
	fulfillment.KindNoDropoffBranch: dto.ErrCodeNoDropoffBranch,
	fulfillment.KindStateMismatch:   dto.ErrCodeStateMismatch,
	fulfillment.KindTransient:       dto.ErrCodeTransientLookup,
	fulfillment.KindRemoteBusiness:  dto.ErrCodeRemoteBusiness,
	fulfillment.KindConflict:        dto.ErrCodeConflict,
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts fulfillment errors to HTTP responses. Platform
// payloads behind a failure are passed through as error.detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	if errors.Is(err, fulfillment.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Order not found", requestID))
		return
	}

	var fe *fulfillment.Error
	if errors.As(err, &fe) {
		code, ok := kindCodes[fe.Kind]
		if !ok {
			code = dto.ErrCodeUnknown
		}
		resp := dto.NewErrorResponseWithRequestID(code, errorMessage(fe), requestID).
			WithDetail(errorDetail(fe))
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	// Unclassified failures, transport errors included
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}

func errorMessage(fe *fulfillment.Error) string {
	msg := fe.Message
	if msg == "" {
		msg = string(fe.Kind)
	}
	if fe.Remote != nil && fe.Remote.Message != "" {
		msg += ": " + fe.Remote.Message
	}
	return msg
}

// errorDetail returns the raw platform payload, or the remote error itself
// when the gateway did not keep the raw body.
func errorDetail(fe *fulfillment.Error) json.RawMessage {
	if len(fe.Detail) > 0 {
		return fe.Detail
	}
	if fe.Remote == nil {
		return nil
	}
	if len(fe.Remote.Raw) > 0 {
		return fe.Remote.Raw
	}
	raw, err := json.Marshal(fe.Remote)
	if err != nil {
		return nil
	}
	return raw
}
