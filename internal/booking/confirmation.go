package booking

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/skip2/go-qrcode"

	"staybook/internal/domain"
)

// QRSize is the rendered edge length of the confirmation code, in pixels.
const QRSize = 256

// Payload is what the confirmation QR code encodes. The field names are read
// by the front desk scanner.
type Payload struct {
	BookingID  string       `json:"bookingId"`
	Hotel      string       `json:"hotel"`
	Location   string       `json:"location"`
	CheckIn    string       `json:"checkIn"`
	CheckOut   string       `json:"checkOut"`
	Guests     int          `json:"guests"`
	TotalPrice domain.Money `json:"totalPrice"`
	Status     string       `json:"status"`
}

type Confirmation struct {
	Reference      string  `json:"reference"`
	Nights         int     `json:"nights"`
	FormattedTotal string  `json:"formatted_total"`
	Payload        Payload `json:"payload"`
}

// Reference is the short code printed under the QR image.
func Reference(bookingID string) string {
	id := strings.ReplaceAll(bookingID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

func NewConfirmation(b domain.Booking, h domain.Hotel) Confirmation {
	// stored bookings already passed Validate; a zero here only means bad data upstream
	n, _ := Nights(b.CheckIn, b.CheckOut)
	return Confirmation{
		Reference:      Reference(b.ID),
		Nights:         n,
		FormattedTotal: FormatPrice(b.TotalPrice),
		Payload: Payload{
			BookingID:  b.ID,
			Hotel:      h.Name,
			Location:   h.Location,
			CheckIn:    FormatDate(b.CheckIn),
			CheckOut:   FormatDate(b.CheckOut),
			Guests:     b.Guests,
			TotalPrice: b.TotalPrice,
			Status:     string(b.Status),
		},
	}
}

// QRCode renders the payload as a PNG with high error correction.
func (c Confirmation) QRCode() ([]byte, error) {
	body, err := json.Marshal(c.Payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal confirmation payload")
	}
	png, err := qrcode.Encode(string(body), qrcode.High, QRSize)
	if err != nil {
		return nil, errors.Wrap(err, "encode confirmation qr")
	}
	return png, nil
}
