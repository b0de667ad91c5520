package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/booking"
	"staybook/internal/domain"
)

func validParams(t *testing.T) domain.CreateBookingParams {
	return domain.CreateBookingParams{
		HotelID:    "h1",
		CheckIn:    date(t, "2024-03-01"),
		CheckOut:   date(t, "2024-03-04"),
		Guests:     2,
		TotalPrice: domain.Cents(30000),
	}
}

func TestValidate_OK(t *testing.T) {
	u := &domain.User{ID: "u1"}
	nb, err := booking.Validate(validParams(t), u)
	require.NoError(t, err)
	assert.Equal(t, "u1", nb.UserID)
	assert.Equal(t, "h1", nb.HotelID)
	assert.Equal(t, 2, nb.Guests)
	assert.Equal(t, domain.StatusConfirmed, nb.Status)
}

func TestValidate_Failures(t *testing.T) {
	u := &domain.User{ID: "u1"}
	cases := []struct {
		name   string
		mutate func(p *domain.CreateBookingParams)
		user   *domain.User
		want   error
	}{
		{"no identity", func(p *domain.CreateBookingParams) {}, nil, domain.ErrUnauthenticated},
		{"empty identity", func(p *domain.CreateBookingParams) {}, &domain.User{}, domain.ErrUnauthenticated},
		{"no hotel", func(p *domain.CreateBookingParams) { p.HotelID = " " }, u, domain.ErrMissingField},
		{"missing check-out", func(p *domain.CreateBookingParams) { p.CheckOut = time.Time{} }, u, domain.ErrInvalidDateRange},
		{"same day", func(p *domain.CreateBookingParams) { p.CheckOut = p.CheckIn }, u, domain.ErrInvalidDateRange},
		{"zero guests", func(p *domain.CreateBookingParams) { p.Guests = 0 }, u, domain.ErrInvalidGuestCount},
		{"negative guests", func(p *domain.CreateBookingParams) { p.Guests = -2 }, u, domain.ErrInvalidGuestCount},
		{"negative total", func(p *domain.CreateBookingParams) { p.TotalPrice = -1 }, u, domain.ErrInvalidRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(t)
			tc.mutate(&p)
			_, err := booking.Validate(p, tc.user)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate_IdentityCheckedFirst(t *testing.T) {
	p := validParams(t)
	p.Guests = 0
	_, err := booking.Validate(p, nil)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}
