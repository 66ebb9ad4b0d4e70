package fulfillment

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMode is the way an order is handed over to the carrier
type ShippingMode string

const (
	ShippingModePickup        ShippingMode = "pickup"
	ShippingModeDropoff       ShippingMode = "dropoff"
	ShippingModeNonIntegrated ShippingMode = "non_integrated"
)

// IsValid returns true for a mode the platform knows about
func (m ShippingMode) IsValid() bool {
	switch m {
	case ShippingModePickup, ShippingModeDropoff, ShippingModeNonIntegrated:
		return true
	}
	return false
}

// IsRequestable returns true for modes a seller may ask for explicitly
func (m ShippingMode) IsRequestable() bool {
	return m == ShippingModePickup || m == ShippingModeDropoff
}

// Address flags reported by the platform
const (
	AddressFlagDefault = "default_address"
	AddressFlagPickup  = "pickup_address"
	AddressFlagReturn  = "return_address"
)

// TimeSlotFlagRecommended marks the slot the platform suggests
const TimeSlotFlagRecommended = "recommended"

// TimeSlot is a pickup window offered for an address
type TimeSlot struct {
	PickupTimeID string   `json:"pickup_time_id"`
	Date         int64    `json:"date"`
	TimeText     string   `json:"time_text,omitempty"`
	Flags        []string `json:"flags,omitempty"`
}

// IsRecommended reports whether the platform flagged this slot
func (s TimeSlot) IsRecommended() bool {
	return slices.Contains(s.Flags, TimeSlotFlagRecommended)
}

// Time returns the slot date as a time value
func (s TimeSlot) Time() time.Time {
	return time.Unix(s.Date, 0)
}

// Address is a seller address usable for pickup
type Address struct {
	AddressID int64      `json:"address_id"`
	Region    string     `json:"region,omitempty"`
	State     string     `json:"state,omitempty"`
	City      string     `json:"city,omitempty"`
	District  string     `json:"district,omitempty"`
	Town      string     `json:"town,omitempty"`
	Address   string     `json:"address,omitempty"`
	Zipcode   string     `json:"zipcode,omitempty"`
	Flags     []string   `json:"address_flag,omitempty"`
	Types     []string   `json:"address_type,omitempty"`
	TimeSlots []TimeSlot `json:"time_slot_list,omitempty"`
}

// HasFlag reports whether the address carries the given flag
func (a Address) HasFlag(flag string) bool {
	return slices.Contains(a.Flags, flag)
}

// HasType reports whether the address carries the given type
func (a Address) HasType(t string) bool {
	return slices.Contains(a.Types, t)
}

// DropoffBranch is a carrier branch the parcel can be dropped at
type DropoffBranch struct {
	BranchID int64  `json:"branch_id"`
	Region   string `json:"region,omitempty"`
	State    string `json:"state,omitempty"`
	City     string `json:"city,omitempty"`
	Address  string `json:"address,omitempty"`
	Zipcode  string `json:"zipcode,omitempty"`
	District string `json:"district,omitempty"`
	Town     string `json:"town,omitempty"`
}

// ShippingParameters is what the platform requires to ship one order
type ShippingParameters struct {
	// InfoNeeded lists the required fields per advertised mode
	InfoNeeded      map[ShippingMode][]string
	PickupAddresses []Address
	DropoffBranches []DropoffBranch
	SenderRealName  string
	// PackageNumber is set when the parameters were fetched for a split order package
	PackageNumber string
	// Raw is the undecoded platform payload
	Raw json.RawMessage
}

// Supports reports whether the platform advertised the mode
func (p *ShippingParameters) Supports(mode ShippingMode) bool {
	if p == nil || p.InfoNeeded == nil {
		return false
	}
	_, ok := p.InfoNeeded[mode]
	return ok
}

// SelectTimeSlot picks the pickup window to book.
// Precedence: the recommended slot, then the first slot dated at or after now,
// then the last slot. Returns nil for an empty list.
func SelectTimeSlot(slots []TimeSlot, now time.Time) *TimeSlot {
	if len(slots) == 0 {
		return nil
	}
	for i := range slots {
		if slots[i].IsRecommended() {
			s := slots[i]
			return &s
		}
	}
	nowUnix := now.Unix()
	for i := range slots {
		if slots[i].Date >= nowUnix {
			s := slots[i]
			return &s
		}
	}
	s := slots[len(slots)-1]
	return &s
}

// SelectPickupAddress picks an address from the general address list.
// Precedence: the pickup_address flag, then pickup_address in the address
// type field, then the first entry. Returns nil for an empty list.
func SelectPickupAddress(addresses []Address) *Address {
	if len(addresses) == 0 {
		return nil
	}
	for i := range addresses {
		if addresses[i].HasFlag(AddressFlagPickup) {
			a := addresses[i]
			return &a
		}
	}
	for i := range addresses {
		if addresses[i].HasType(AddressFlagPickup) {
			a := addresses[i]
			return &a
		}
	}
	a := addresses[0]
	return &a
}

// PickupSelection is the chosen pickup address and window
type PickupSelection struct {
	Address         Address   `json:"address"`
	TimeSlot        *TimeSlot `json:"time_slot"`
	ShippingChannel string    `json:"shipping_channel,omitempty"`
}

// ToDetails converts the selection into its persisted form
func (s *PickupSelection) ToDetails() *PickupDetails {
	if s == nil {
		return nil
	}
	addr := s.Address
	addr.TimeSlots = nil
	return &PickupDetails{
		Address:         &addr,
		TimeSlot:        s.TimeSlot,
		ShippingChannel: s.ShippingChannel,
	}
}

// DropoffSelection is the chosen branch for a dropoff
type DropoffSelection struct {
	Branch         *DropoffBranch `json:"branch"`
	SenderRealName string         `json:"sender_real_name"`
}

// ShipmentPayload is a fully assembled ship request
type ShipmentPayload struct {
	OrderSn       string
	PackageNumber string
	Mode          ShippingMode
	Pickup        *PickupSelection
	Dropoff       *DropoffSelection
}

// PackageInfo is one package of a (possibly split) order
type PackageInfo struct {
	PackageNumber   string
	LogisticsStatus string
	ShippingCarrier string
	TrackingNumber  string
}

// OrderDetail is the subset of the platform order detail the fulfillment flow reads
type OrderDetail struct {
	OrderSn              string
	Status               string
	ShippingCarrier      string
	TrackingNumber       string
	Currency             string
	TotalAmount          decimal.Decimal
	EstimatedShippingFee decimal.Decimal
	Packages             []PackageInfo
}

// FirstPackageNumber returns the identifier of the first package, or ""
func (d *OrderDetail) FirstPackageNumber() string {
	if d == nil || len(d.Packages) == 0 {
		return ""
	}
	return d.Packages[0].PackageNumber
}

// KnownTrackingNumber returns the first tracking number present on the order or its packages
func (d *OrderDetail) KnownTrackingNumber() string {
	if d == nil {
		return ""
	}
	if d.TrackingNumber != "" {
		return d.TrackingNumber
	}
	for _, p := range d.Packages {
		if p.TrackingNumber != "" {
			return p.TrackingNumber
		}
	}
	return ""
}

// Carrier returns the carrier name from the order or its first package
func (d *OrderDetail) Carrier() string {
	if d == nil {
		return ""
	}
	if d.ShippingCarrier != "" {
		return d.ShippingCarrier
	}
	for _, p := range d.Packages {
		if p.ShippingCarrier != "" {
			return p.ShippingCarrier
		}
	}
	return ""
}

// TrackingEvent is one entry of the logistics timeline
type TrackingEvent struct {
	UpdateTime      int64  `json:"update_time"`
	Description     string `json:"description"`
	LogisticsStatus string `json:"logistics_status"`
}

// TrackingInfo is the logistics timeline for an order
type TrackingInfo struct {
	OrderSn         string
	PackageNumber   string
	LogisticsStatus string
	Events          []TrackingEvent
}

// SortedEvents returns the events newest first
func (t *TrackingInfo) SortedEvents() []TrackingEvent {
	if t == nil || len(t.Events) == 0 {
		return []TrackingEvent{}
	}
	events := slices.Clone(t.Events)
	slices.SortStableFunc(events, func(a, b TrackingEvent) int {
		switch {
		case a.UpdateTime > b.UpdateTime:
			return -1
		case a.UpdateTime < b.UpdateTime:
			return 1
		}
		return 0
	})
	return events
}

// TrackingResolution is the outcome of resolving a tracking number
type TrackingResolution struct {
	TrackingNumber  string
	PackageNumber   string
	ShippingCarrier string
	AttemptsMade    int
}
