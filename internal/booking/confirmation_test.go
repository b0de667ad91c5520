package booking_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/booking"
	"staybook/internal/domain"
)

func TestReference(t *testing.T) {
	assert.Equal(t, "3F2504E0", booking.Reference("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	assert.Equal(t, "AB", booking.Reference("ab"))
}

func TestNewConfirmation(t *testing.T) {
	b := domain.Booking{
		ID:         "3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		HotelID:    "h1",
		CheckIn:    date(t, "2024-03-01"),
		CheckOut:   date(t, "2024-03-04"),
		Guests:     2,
		TotalPrice: domain.Cents(30000),
		Status:     domain.StatusConfirmed,
		CreatedAt:  time.Now(),
	}
	h := domain.Hotel{ID: "h1", Name: "Sea View", Location: "12 Beach Rd"}

	c := booking.NewConfirmation(b, h)
	assert.Equal(t, "3F2504E0", c.Reference)
	assert.Equal(t, 3, c.Nights)
	assert.Equal(t, "$300.00", c.FormattedTotal)

	raw, err := json.Marshal(c.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bookingId":"3f2504e0-4f89-11d3-9a0c-0305e82c3301",
		"hotel":"Sea View","location":"12 Beach Rd",
		"checkIn":"2024-03-01","checkOut":"2024-03-04",
		"guests":2,"totalPrice":300.00,"status":"confirmed"}`, string(raw))

	png, err := c.QRCode()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG signature")
}
