package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Platform errors
var (
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformUnavailable     = errors.New("integration: platform temporarily unavailable")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
)

// Gateway issues authenticated calls against the platform open API.
// A non-nil error is returned only for transport level failures; business
// failures reported by the platform come back in GatewayResponse.Error.
// Implementations never retry.
type Gateway interface {
	Call(ctx context.Context, req *GatewayRequest) (*GatewayResponse, error)
}

// GatewayRequest describes a single platform call
type GatewayRequest struct {
	Path   string
	Method string
	// Params are sent as query parameters for GET and as a JSON body otherwise
	Params map[string]any
}

// Validate checks the request is usable
func (r *GatewayRequest) Validate() error {
	if r == nil || r.Path == "" {
		return errors.New("integration: request path is required")
	}
	switch r.Method {
	case "":
		r.Method = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return errors.New("integration: unsupported request method")
	}
	return nil
}

// GatewayResponse is the uniform envelope returned by every platform endpoint
type GatewayResponse struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Warning   string          `json:"warning,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	// Raw holds the full undecoded body
	Raw json.RawMessage `json:"-"`
}

// IsSuccess reports whether the platform accepted the call
func (r *GatewayResponse) IsSuccess() bool {
	return r != nil && r.Error == ""
}

// Decode unmarshals the response payload into v.
// An empty payload leaves v untouched.
func (r *GatewayResponse) Decode(v any) error {
	if r == nil || len(r.Response) == 0 || string(r.Response) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Response, v); err != nil {
		return errors.Join(ErrPlatformInvalidResponse, err)
	}
	return nil
}
