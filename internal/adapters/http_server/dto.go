package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"staybook/internal/booking"
	"staybook/internal/domain"
)

const maxBody = 1 << 16

// Required fields are left to the presenters so the user sees their messages;
// the tags only bound shape and size.
type signUpRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"max=72"`
	FullName string `json:"full_name" validate:"max=120"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"max=254"`
	Password string `json:"password" validate:"max=72"`
}

type createBookingRequest struct {
	HotelID    string        `json:"hotel_id" validate:"max=64"`
	CheckIn    string        `json:"check_in_date" validate:"max=40"`
	CheckOut   string        `json:"check_out_date" validate:"max=40"`
	Guests     int           `json:"guests" validate:"lte=100"`
	TotalPrice *domain.Money `json:"total_price,omitempty"`
}

func (c createBookingRequest) params() (domain.CreateBookingParams, error) {
	p := domain.CreateBookingParams{HotelID: c.HotelID, Guests: c.Guests}
	var err error
	if strings.TrimSpace(c.CheckIn) != "" {
		if p.CheckIn, err = booking.ParseDate(c.CheckIn); err != nil {
			return p, err
		}
	}
	if strings.TrimSpace(c.CheckOut) != "" {
		if p.CheckOut, err = booking.ParseDate(c.CheckOut); err != nil {
			return p, err
		}
	}
	if c.TotalPrice != nil {
		p.TotalPrice = *c.TotalPrice
	}
	return p, nil
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type invalidRequest struct {
	problem
	Fields []fieldError `json:"fields,omitempty"`
}

// decode reads a JSON body into dst and checks its tags. It writes the
// 400 itself and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON object")
		return false
	}
	if err := v.Struct(dst); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
			return false
		}
		out := invalidRequest{problem: problem{
			Type: "about:blank", Title: "Invalid request", Status: http.StatusBadRequest,
			Detail: "one or more fields are invalid",
		}}
		for _, fe := range ves {
			out.Fields = append(out.Fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(out)
		return false
	}
	return true
}

// newValidator reports JSON names rather than Go field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ---- responses ----

type bookingView struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	HotelID        string       `json:"hotel_id"`
	CheckIn        string       `json:"check_in_date"`
	CheckOut       string       `json:"check_out_date"`
	Guests         int          `json:"guests"`
	TotalPrice     domain.Money `json:"total_price"`
	FormattedTotal string       `json:"formatted_total"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
}

func viewBooking(b domain.Booking) bookingView {
	return bookingView{
		ID:             b.ID,
		UserID:         b.UserID,
		HotelID:        b.HotelID,
		CheckIn:        booking.FormatDate(b.CheckIn),
		CheckOut:       booking.FormatDate(b.CheckOut),
		Guests:         b.Guests,
		TotalPrice:     b.TotalPrice,
		FormattedTotal: booking.FormatPrice(b.TotalPrice),
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

type stayView struct {
	bookingView
	Nights int           `json:"nights"`
	Hotel  *domain.Hotel `json:"hotel"`
}

type sessionView struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        domain.User `json:"user"`
}

func viewSession(s domain.Session) sessionView {
	return sessionView{AccessToken: s.Token, TokenType: "Bearer", ExpiresAt: s.ExpiresAt, User: s.User}
}
