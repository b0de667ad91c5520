// Package booking holds the transport-free booking rules: stay length,
// pricing, price formatting, creation preconditions and the confirmation code.
package booking

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"staybook/internal/domain"
)

// DateLayout is the ISO calendar form dates travel in.
const DateLayout = "2006-01-02"

// CurrencySymbol is the one symbol every rendered amount carries.
const CurrencySymbol = "$"

// Day drops the time of day, keeping the calendar date t shows in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts "2024-03-01" or a full RFC 3339 timestamp, returning the calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.ErrInvalidDateRange.WithMsg("check-in and check-out dates are required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDateRange.WithMsg("dates must look like 2006-01-02").Because(errors.Wrapf(err, "parse date %q", s))
	}
	return Day(t), nil
}

// FormatDate renders a calendar day in DateLayout.
func FormatDate(t time.Time) string { return Day(t).Format(DateLayout) }

// Nights is the number of nights between two calendar days. A stay must be at
// least one night; same-day or inverted ranges fail with ErrInvalidDateRange.
func Nights(checkIn, checkOut time.Time) (int, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0, domain.ErrInvalidDateRange.WithMsg("check-in and check-out dates are required")
	}
	in, out := Day(checkIn), Day(checkOut)
	if !out.After(in) {
		return 0, domain.ErrInvalidDateRange
	}
	// both ends are UTC midnights, so the difference is a whole number of days
	return int(out.Sub(in) / (24 * time.Hour)), nil
}

// TotalPrice is nightlyRate times Nights(checkIn, checkOut).
func TotalPrice(nightlyRate domain.Money, checkIn, checkOut time.Time) (domain.Money, error) {
	if nightlyRate < 0 {
		return 0, domain.ErrInvalidRate
	}
	n, err := Nights(checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	total, err := nightlyRate.Times(n)
	if err != nil {
		return 0, domain.ErrInvalidRate.WithMsg("total is out of range").Because(err)
	}
	return total, nil
}

// FormatPrice renders an amount as "$300.00".
func FormatPrice(amount domain.Money) string {
	d := amount.Decimal()
	if strings.HasPrefix(d, "-") {
		return "-" + CurrencySymbol + d[1:]
	}
	return CurrencySymbol + d
}

// Quote is the price breakdown shown before booking.
type Quote struct {
	HotelID        string       `json:"hotel_id"`
	CheckIn        string       `json:"check_in"`
	CheckOut       string       `json:"check_out"`
	Nights         int          `json:"nights"`
	NightlyRate    domain.Money `json:"nightly_rate"`
	Total          domain.Money `json:"total"`
	FormattedRate  string       `json:"formatted_rate"`
	FormattedTotal string       `json:"formatted_total"`
}

func NewQuote(h domain.Hotel, checkIn, checkOut time.Time) (Quote, error) {
	total, err := TotalPrice(h.PricePerNight, checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	n, _ := Nights(checkIn, checkOut)
	return Quote{
		HotelID:        h.ID,
		CheckIn:        FormatDate(checkIn),
		CheckOut:       FormatDate(checkOut),
		Nights:         n,
		NightlyRate:    h.PricePerNight,
		Total:          total,
		FormattedRate:  FormatPrice(h.PricePerNight),
		FormattedTotal: FormatPrice(total),
	}, nil
}
