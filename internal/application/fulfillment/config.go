package fulfillment

import "time"

const (
	// resolveCalls is the most gateway calls the mode resolver makes:
	// shipping parameter, order detail for the package number, shipping parameter again.
	resolveCalls = 3
	// trackingCallsPerAttempt covers the tracking number lookup and its order detail fallback
	trackingCallsPerAttempt = 2
	// lockSlack absorbs rate limiter waits and store writes on top of the gateway calls
	lockSlack = 10 * time.Second
)

// Config tunes the fulfillment workflow
type Config struct {
	// TrackingAttempts is the number of tracking number lookups after a shipment
	TrackingAttempts int
	// TrackingRetryDelay is the fixed wait before every lookup but the first
	TrackingRetryDelay time.Duration
	// DefaultCarrier labels pickup details when no carrier is known
	DefaultCarrier string
	// CallTimeout is the gateway timeout of a single platform call
	CallTimeout time.Duration
	// ShipmentLockTTL bounds how long one submission holds the per-order guard.
	// It is never shorter than WorkflowBudget.
	ShipmentLockTTL time.Duration
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	c := Config{
		TrackingAttempts:   3,
		TrackingRetryDelay: 2 * time.Second,
		DefaultCarrier:     "Shopee Xpress",
		CallTimeout:        30 * time.Second,
	}
	c.ShipmentLockTTL = c.WorkflowBudget()
	return c
}

// WorkflowBudget is the longest a SubmitShipment can run when every
// platform call uses its full timeout.
func (c Config) WorkflowBudget() time.Duration {
	calls := resolveCalls + 1 + trackingCallsPerAttempt*c.TrackingAttempts
	waits := time.Duration(max(c.TrackingAttempts-1, 0)) * c.TrackingRetryDelay
	return time.Duration(calls)*c.CallTimeout + waits + lockSlack
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TrackingAttempts <= 0 {
		c.TrackingAttempts = d.TrackingAttempts
	}
	if c.TrackingRetryDelay < 0 {
		c.TrackingRetryDelay = d.TrackingRetryDelay
	}
	if c.DefaultCarrier == "" {
		c.DefaultCarrier = d.DefaultCarrier
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	c.ShipmentLockTTL = max(c.ShipmentLockTTL, c.WorkflowBudget())
	return c
}

// Normalized returns c with defaults applied and the lock TTL raised to the
// workflow budget.
func (c Config) Normalized() Config {
	return c.withDefaults()
}
