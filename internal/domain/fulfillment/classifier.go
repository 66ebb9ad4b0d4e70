package fulfillment

import "strings"

// RemoteOutcome is the classified meaning of a platform error
type RemoteOutcome int

const (
	OutcomeNone RemoteOutcome = iota
	// OutcomePackageRequired means the order is split and a package number must be sent
	OutcomePackageRequired
	// OutcomeStateMismatch means the order is no longer in a shippable state
	OutcomeStateMismatch
	// OutcomeAuth means the credentials were rejected
	OutcomeAuth
	// OutcomeBusiness is any other platform rejection
	OutcomeBusiness
)

// String returns the outcome name
func (o RemoteOutcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePackageRequired:
		return "package_required"
	case OutcomeStateMismatch:
		return "state_mismatch"
	case OutcomeAuth:
		return "auth"
	case OutcomeBusiness:
		return "business"
	}
	return "unknown"
}

// Tokens observed on the platform. They are not a stable contract.
var (
	packageRequiredTokens = []string{
		"package_number_not_exist",
		"package_number is required",
		"package_number required",
	}
	stateMismatchTokens = []string{
		"order_status_error",
		"invalid_order_status",
		"order status is not",
		"order status not",
		"not in ready_to_ship",
		"status mismatch",
		"already shipped",
		"has been cancelled",
	}
	authTokens = []string{
		"error_auth",
		"invalid_access_token",
		"invalid_acceess_token",
		"invalid_partner_id",
		"error_sign",
		"error_permission",
		"access_token expired",
	}
)

// ClassifyRemoteError maps a platform error code and message to an outcome.
// An empty code means success.
func ClassifyRemoteError(code, message string) RemoteOutcome {
	if code == "" {
		return OutcomeNone
	}
	haystack := strings.ToLower(code + " " + message)
	switch {
	case containsAny(haystack, packageRequiredTokens):
		return OutcomePackageRequired
	case containsAny(haystack, authTokens):
		return OutcomeAuth
	case containsAny(haystack, stateMismatchTokens):
		return OutcomeStateMismatch
	}
	return OutcomeBusiness
}

// ClassifyError classifies err when it carries a platform payload
func ClassifyError(err error) RemoteOutcome {
	if err == nil {
		return OutcomeNone
	}
	if re, ok := AsRemoteError(err); ok {
		return ClassifyRemoteError(re.Code, re.Message)
	}
	return OutcomeBusiness
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
