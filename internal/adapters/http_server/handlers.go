package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"staybook/internal/booking"
	"staybook/internal/domain"
)

type hotelPresenter interface {
	LoadAllHotels(ctx context.Context) ([]domain.Hotel, error)
	SearchHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error)
	GetHotelDetails(ctx context.Context, id string) (domain.Hotel, bool, error)
	Quote(ctx context.Context, id string, checkIn, checkOut time.Time) (booking.Quote, error)
}

type bookingPresenter interface {
	CreateBooking(ctx context.Context, p domain.CreateBookingParams) (domain.Booking, error)
	LoadUserBookings(ctx context.Context) ([]domain.Booking, error)
	LoadUserStays(ctx context.Context) ([]domain.Stay, error)
	GetBooking(ctx context.Context, id string) (domain.Booking, error)
	Confirmation(ctx context.Context, id string) (booking.Confirmation, error)
}

type identityPresenter interface {
	HandleSignUp(ctx context.Context, email, password, fullName string) (domain.Session, error)
	HandleSignIn(ctx context.Context, email, password string) (domain.Session, error)
	HandleSignOut(ctx context.Context) error
	RefreshSession(ctx context.Context) (domain.Session, error)
	GetCurrentUser(ctx context.Context) *domain.User
}

type Handlers struct {
	hotels   hotelPresenter
	bookings bookingPresenter
	identity identityPresenter
	validate *validator.Validate
}

func NewHandlers(h hotelPresenter, b bookingPresenter, i identityPresenter) *Handlers {
	return &Handlers{hotels: h, bookings: b, identity: i, validate: newValidator()}
}

type RouteOptions struct {
	Sessions  verifier
	AuthRPS   float64
	AuthBurst int
}

func (s *Server) MountHandlers(h *Handlers, o RouteOptions) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(o.Sessions))

		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/quote", h.quote)

		limit := RateLimit(o.AuthRPS, o.AuthBurst)
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/signup", h.signUp)
			r.With(limit).Post("/signin", h.signIn)
			r.Post("/signout", h.signOut)
			r.Post("/refresh", h.refresh)
			r.Get("/me", h.me)
		})

		r.Post("/bookings", h.createBooking)
		r.Get("/bookings", h.listBookings)
		r.Get("/bookings/{id}", h.getBooking)
		r.Get("/bookings/{id}/confirmation", h.confirmation)
		r.Get("/bookings/{id}/qr.png", h.qrCode)
	})
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	var (
		out []domain.Hotel
		err error
	)
	if city := strings.TrimSpace(r.URL.Query().Get("city")); city != "" {
		out, err = h.hotels.SearchHotels(r.Context(), domain.HotelsQuery{City: city})
	} else {
		out, err = h.hotels.LoadAllHotels(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, found, err := h.hotels.GetHotelDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, domain.ErrHotelNotFound)
		return
	}
	writeCached(w, r, hotel)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	checkIn, err := booking.ParseDate(q.Get("checkIn"))
	if err != nil {
		writeError(w, err)
		return
	}
	checkOut, err := booking.ParseDate(q.Get("checkOut"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := h.hotels.Quote(r.Context(), chi.URLParam(r, "id"), checkIn, checkOut)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- identity ----

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	s, err := h.identity.HandleSignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSession(s))
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	s, err := h.identity.HandleSignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(s))
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.HandleSignOut(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) refresh(w http.ResponseWriter, r *http.Request) {
	s, err := h.identity.RefreshSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSession(s))
}

// me answers {"user": null} when signed out rather than 401.
func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]*domain.User{"user": h.identity.GetCurrentUser(r.Context())})
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	p, err := req.params()
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := h.bookings.CreateBooking(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/bookings/"+b.ID)
	writeJSON(w, http.StatusCreated, viewBooking(b))
}

// listBookings returns the caller's bookings; ?include=hotel joins each
// with its hotel.
func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("include") == "hotel" {
		stays, err := h.bookings.LoadUserStays(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]stayView, 0, len(stays))
		for _, s := range stays {
			out = append(out, stayView{bookingView: viewBooking(s.Booking), Nights: s.Nights, Hotel: s.Hotel})
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	bs, err := h.bookings.LoadUserBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, viewBooking(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBooking(b))
}

func (h *Handlers) confirmation(w http.ResponseWriter, r *http.Request) {
	c, err := h.bookings.Confirmation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) qrCode(w http.ResponseWriter, r *http.Request) {
	c, err := h.bookings.Confirmation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := c.QRCode()
	if err != nil {
		log.Error().Err(err).Str("booking_id", c.Payload.BookingID).Msg("render qr failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not render the confirmation code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("failed to write qr body")
	}
}
