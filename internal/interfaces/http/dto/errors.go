package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeServiceUnavailable is used when a dependency is down
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when platform credentials are missing or rejected
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used when a shipment for the order is already in flight
	ErrCodeConflict = "ERR_CONFLICT"
)

// Fulfillment error codes
const (
	// ErrCodeModeUnavailable is used when the order does not offer the requested shipping mode
	ErrCodeModeUnavailable = "ERR_MODE_UNAVAILABLE"
	// ErrCodeNoPickupAddress is used when no pickup address can be selected
	ErrCodeNoPickupAddress = "ERR_NO_PICKUP_ADDRESS"
	// ErrCodeNoDropoffBranch is used when no dropoff branch can be selected
	ErrCodeNoDropoffBranch = "ERR_NO_DROPOFF_BRANCH"
	// ErrCodeStateMismatch is used when the order left the shippable state
	ErrCodeStateMismatch = "ERR_STATE_MISMATCH"
	// ErrCodeRemoteBusiness is used when the platform rejects a request
	ErrCodeRemoteBusiness = "ERR_REMOTE_BUSINESS"
	// ErrCodeTransientLookup is used when a platform lookup failed
	ErrCodeTransientLookup = "ERR_TRANSIENT_LOOKUP"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Caller-correctable fulfillment failures -> 400 Bad Request
	ErrCodeModeUnavailable: http.StatusBadRequest,
	ErrCodeNoPickupAddress: http.StatusBadRequest,
	ErrCodeNoDropoffBranch: http.StatusBadRequest,
	ErrCodeStateMismatch:   http.StatusBadRequest,

	// Platform-side failures -> 500
	ErrCodeRemoteBusiness:  http.StatusInternalServerError,
	ErrCodeTransientLookup: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a 400 response listing the rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
