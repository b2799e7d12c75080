// Package model defines the core domain types for the hotel reservation system.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RoomStatus is the operational state of a physical room.
type RoomStatus string

const (
	RoomAvailable    RoomStatus = "AVAILABLE"
	RoomOccupied     RoomStatus = "OCCUPIED"
	RoomMaintenance  RoomStatus = "MAINTENANCE"
	RoomOutOfService RoomStatus = "OUT_OF_SERVICE"
)

// BedType is the bed configuration of a room type.
type BedType string

const (
	BedKing    BedType = "KING"
	BedQueen   BedType = "QUEEN"
	BedDouble  BedType = "DOUBLE"
	BedTwin    BedType = "TWIN"
	BedSingle  BedType = "SINGLE"
	BedSofaBed BedType = "SOFA_BED"
	BedFuton   BedType = "FUTON"
	BedBunkBed BedType = "BUNK_BED"
)

// Amenity is a feature offered by a room type.
type Amenity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPremium   bool   `json:"is_premium"`
}

// RoomType is a class of rooms sharing capacity, bed configuration and base rate.
type RoomType struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
	MaxAdults   int             `json:"max_adults"`
	MaxChildren int             `json:"max_children"`
	BedType     BedType         `json:"bed_type"`
	BedCount    int             `json:"bed_count"`
	Size        int             `json:"size"`
	Amenities   []Amenity       `json:"amenities"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Fits reports whether a single room of this type can hold the party.
func (rt *RoomType) Fits(adults, children int) bool {
	return adults <= rt.MaxAdults && children <= rt.MaxChildren
}

// PricingWindow overrides the nightly rate of a room type for the inclusive
// date range [StartDate, EndDate].
type PricingWindow struct {
	ID            string          `json:"id"`
	RoomTypeID    string          `json:"room_type_id"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Reason        string          `json:"reason,omitempty"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Room is a physical, bookable room.
type Room struct {
	ID          string     `json:"id"`
	RoomNumber  string     `json:"room_number"`
	RoomTypeID  string     `json:"room_type_id"`
	FloorNumber int        `json:"floor_number"`
	Status      RoomStatus `json:"status"`
	Notes       string     `json:"notes,omitempty"`
}

// RoomNumberLess orders room numbers so that "99" sorts before "100".
// Purely numeric numbers come first in numeric order, the rest follow in
// lexical order.
func RoomNumberLess(a, b string) bool {
	na, errA := strconv.Atoi(strings.TrimSpace(a))
	nb, errB := strconv.Atoi(strings.TrimSpace(b))
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// OverrideReason explains why a room is blocked.
type OverrideReason string

const (
	OverrideMaintenance OverrideReason = "MAINTENANCE"
	OverrideRenovation  OverrideReason = "RENOVATION"
	OverrideVIPHold     OverrideReason = "VIP_HOLD"
	OverrideBlocked     OverrideReason = "BLOCKED"
)

// AvailabilityOverride blocks a room for [StartDate, EndDate) independently
// of its bookings.
type AvailabilityOverride struct {
	ID        string         `json:"id"`
	RoomID    string         `json:"room_id"`
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Reason    OverrideReason `json:"reason"`
	Note      string         `json:"note,omitempty"`
}

// Guest is the contact identity attached to a booking.
type Guest struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Address     string    `json:"address,omitempty"`
	Country     string    `json:"country,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingNoShow     BookingStatus = "NO_SHOW"
)

// Holds reports whether a booking in this status occupies its room.
func (s BookingStatus) Holds() bool {
	return s == BookingConfirmed || s == BookingCheckedIn
}

// ActiveBookingStatuses are the statuses that block a room.
var ActiveBookingStatuses = []BookingStatus{BookingConfirmed, BookingCheckedIn}

// Booking reserves one room for [CheckInDate, CheckOutDate). Prices are a
// snapshot taken at creation time.
type Booking struct {
	ID               string          `json:"id"`
	GuestID          string          `json:"guest_id"`
	RoomID           string          `json:"room_id"`
	Adults           int             `json:"number_of_adults"`
	Children         int             `json:"number_of_children"`
	SpecialRequests  string          `json:"special_requests,omitempty"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Status           BookingStatus   `json:"status"`
	ConfirmationCode string          `json:"confirmation_code"`
	CheckInDate      time.Time       `json:"check_in_date"`
	CheckOutDate     time.Time       `json:"check_out_date"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PaymentMethod is how the guest paid.
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentPayPal       PaymentMethod = "PAYPAL"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCash         PaymentMethod = "CASH"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentBankTransfer, PaymentCash:
		return true
	default:
		return false
	}
}

// PaymentStatus is the state of a payment record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment records the money taken for a booking.
type Payment struct {
	ID            string          `json:"id"`
	BookingID     string          `json:"booking_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        PaymentStatus   `json:"status"`
	Gateway       string          `json:"payment_gateway,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// BookingConfirmation is what a guest sees after booking or looking a booking up.
type BookingConfirmation struct {
	ConfirmationCode string          `json:"confirmation_code"`
	Guest            Guest           `json:"guest"`
	RoomNumber       string          `json:"room_number"`
	RoomTypeName     string          `json:"room_type_name"`
	CheckInDate      time.Time       `json:"check_in_date"`
	CheckOutDate     time.Time       `json:"check_out_date"`
	Adults           int             `json:"number_of_adults"`
	Children         int             `json:"number_of_children"`
	SpecialRequests  string          `json:"special_requests,omitempty"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Status           BookingStatus   `json:"status"`
	Payments         []Payment       `json:"payments"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ─── Search ──────────────────────────────────────────────────────────────────

// NightlyRate is the resolved price for one night of a stay.
type NightlyRate struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// RoomTypeMatch is a room type that can hold the whole party on its own.
type RoomTypeMatch struct {
	RoomType       RoomType        `json:"room_type"`
	AvailableRooms int             `json:"available_rooms"`
	PricePerNight  decimal.Decimal `json:"price_per_night"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Nightly        []NightlyRate   `json:"nightly"`
}

// PlanItem is one room type and how many of its rooms a plan uses.
type PlanItem struct {
	RoomTypeID   string          `json:"room_type_id"`
	RoomTypeName string          `json:"room_type_name"`
	Count        int             `json:"count"`
	MaxAdults    int             `json:"max_adults"`
	MaxChildren  int             `json:"max_children"`
	StayPrice    decimal.Decimal `json:"stay_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// BookingPlan is a multi-room allocation that jointly holds the party.
type BookingPlan struct {
	Items         []PlanItem      `json:"items"`
	TotalRooms    int             `json:"total_rooms"`
	TotalAdults   int             `json:"total_adults"`
	TotalChildren int             `json:"total_children"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Plans are the two ranked views over the feasible booking plans.
// Truncated is set when the search stopped early and the views may miss
// better plans.
type Plans struct {
	BudgetFriendly []BookingPlan `json:"budget_friendly"`
	Convenience    []BookingPlan `json:"convenience"`
	Truncated      bool          `json:"truncated"`
}

// SearchResult is the outcome of an availability search. Plans is set only
// when no single room type can hold the party.
type SearchResult struct {
	CheckInDate       time.Time       `json:"check_in_date"`
	CheckOutDate      time.Time       `json:"check_out_date"`
	Nights            int             `json:"nights"`
	Adults            int             `json:"adults"`
	Children          int             `json:"children"`
	MatchingRoomTypes []RoomTypeMatch `json:"matching_room_types"`
	Plans             *Plans          `json:"plans,omitempty"`
}

// ─── Requests ────────────────────────────────────────────────────────────────

// SearchRequest is the query of GET /availability.
type SearchRequest struct {
	CheckInDate  string `json:"check_in" validate:"required"`
	CheckOutDate string `json:"check_out" validate:"required"`
	Adults       int    `json:"adults"`
	Children     int    `json:"children"`
}

// GuestInfo is the guest contact block of a booking request.
type GuestInfo struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=15"`
	Address     string `json:"address" validate:"omitempty,max=400"`
	Country     string `json:"country" validate:"omitempty,max=40"`
}

// CreateBookingRequest is the payload for POST /bookings.
type CreateBookingRequest struct {
	Guest           GuestInfo     `json:"guest" validate:"required"`
	RoomTypeID      string        `json:"room_type" validate:"required"`
	CheckInDate     string        `json:"check_in_date" validate:"required"`
	CheckOutDate    string        `json:"check_out_date" validate:"required"`
	Adults          int           `json:"number_of_adults"`
	Children        int           `json:"number_of_children"`
	SpecialRequests string        `json:"special_requests" validate:"max=2000"`
	PaymentToken    string        `json:"payment_token" validate:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method" validate:"required"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}
