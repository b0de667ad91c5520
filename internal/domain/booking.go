package domain

import "time"

// BookingStatus is kept open: the store may hand back labels this build does not know.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	HotelID    string        `json:"hotel_id"`
	CheckIn    time.Time     `json:"check_in_date"`  // date-only, UTC midnight
	CheckOut   time.Time     `json:"check_out_date"` // date-only, UTC midnight
	Guests     int           `json:"guests"`
	TotalPrice Money         `json:"total_price"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// CreateBookingParams is what the presentation layer submits.
// TotalPrice is advisory; the authoritative total is recomputed from the hotel rate.
type CreateBookingParams struct {
	HotelID    string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice Money
}

// NewBooking is a validated creation request, ready to be persisted.
type NewBooking struct {
	UserID     string
	HotelID    string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice Money
	Status     BookingStatus
}

// Stay is a booking joined with its hotel for list views. Hotel is nil when
// the lookup failed or the hotel no longer exists.
type Stay struct {
	Booking        Booking
	Hotel          *Hotel
	Nights         int
	FormattedTotal string
}

// BookingConfirmedEvent is published after a booking is stored.
type BookingConfirmedEvent struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	UserEmail  string `json:"user_email,omitempty"`
	HotelID    string `json:"hotel_id"`
	HotelName  string `json:"hotel_name,omitempty"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	TotalCents int64  `json:"total_cents"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}
