package booking

import (
	"strings"

	"staybook/internal/domain"
)

// Validate checks a creation request before anything is written. identity is
// nil when no one is signed in. On success it returns the row to persist,
// tagged with the caller's id and the confirmed status.
func Validate(p domain.CreateBookingParams, identity *domain.User) (domain.NewBooking, error) {
	if identity == nil || identity.ID == "" {
		return domain.NewBooking{}, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(p.HotelID) == "" {
		return domain.NewBooking{}, domain.ErrMissingField.WithMsg("a hotel must be selected")
	}
	if _, err := Nights(p.CheckIn, p.CheckOut); err != nil {
		return domain.NewBooking{}, err
	}
	if p.Guests < 1 {
		return domain.NewBooking{}, domain.ErrInvalidGuestCount
	}
	if p.TotalPrice < 0 {
		return domain.NewBooking{}, domain.ErrInvalidRate.WithMsg("total price cannot be negative")
	}
	return domain.NewBooking{
		UserID:     identity.ID,
		HotelID:    strings.TrimSpace(p.HotelID),
		CheckIn:    Day(p.CheckIn),
		CheckOut:   Day(p.CheckOut),
		Guests:     p.Guests,
		TotalPrice: p.TotalPrice,
		Status:     domain.StatusConfirmed,
	}, nil
}
