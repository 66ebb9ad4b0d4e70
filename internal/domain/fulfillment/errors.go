package fulfillment

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind classifies fulfillment failures
type ErrorKind string

const (
	KindAuth            ErrorKind = "AUTH_ERROR"
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindModeUnavailable ErrorKind = "MODE_UNAVAILABLE"
	KindNoPickupAddress ErrorKind = "NO_PICKUP_ADDRESS"
	KindNoDropoffBranch ErrorKind = "NO_DROPOFF_BRANCH"
	KindStateMismatch   ErrorKind = "STATE_MISMATCH"
	KindTransient       ErrorKind = "TRANSIENT_LOOKUP_FAILURE"
	KindRemoteBusiness  ErrorKind = "REMOTE_BUSINESS_ERROR"
	KindConflict        ErrorKind = "CONFLICT"
)

// RemoteError is a business failure reported by the platform
type RemoteError struct {
	Code      string          `json:"error"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "platform error " + e.Code
	}
	return fmt.Sprintf("platform error %s: %s", e.Code, e.Message)
}

// Error is a classified fulfillment failure
type Error struct {
	Kind    ErrorKind
	Message string
	// Remote is set when the failure originates from a platform response
	Remote *RemoteError
	// Detail carries the raw platform payload behind a non-error response
	Detail json.RawMessage
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Remote != nil {
		return fmt.Sprintf("fulfillment: %s: %s", msg, e.Remote.Error())
	}
	if e.Err != nil {
		return fmt.Sprintf("fulfillment: %s: %v", msg, e.Err)
	}
	return "fulfillment: " + msg
}

// Unwrap returns the underlying cause and platform payload
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Remote != nil {
		errs = append(errs, e.Remote)
	}
	return errs
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Kind sentinels, for errors.Is
var (
	ErrAuth            = &Error{Kind: KindAuth, Message: "platform credentials missing or rejected"}
	ErrValidation      = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrModeUnavailable = &Error{Kind: KindModeUnavailable, Message: "shipping mode not available for this order"}
	ErrNoPickupAddress = &Error{Kind: KindNoPickupAddress, Message: "no pickup address available"}
	ErrNoDropoffBranch = &Error{Kind: KindNoDropoffBranch, Message: "no dropoff branch available"}
	ErrStateMismatch   = &Error{Kind: KindStateMismatch, Message: "order is no longer in a shippable state"}
	ErrTransient       = &Error{Kind: KindTransient, Message: "lookup failed"}
	ErrRemoteBusiness  = &Error{Kind: KindRemoteBusiness, Message: "platform rejected the request"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "shipment already in progress"}
)

// NewError creates a classified error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewRemoteError creates a classified error carrying the platform payload
func NewRemoteError(kind ErrorKind, message string, remote *RemoteError) *Error {
	return &Error{Kind: kind, Message: message, Remote: remote}
}

// WrapError creates a classified error around a cause
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or "" when err is not classified
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// AsRemoteError extracts the platform payload carried by err
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
