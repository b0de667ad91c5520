package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"staybook/internal/adapters/observability"
	"staybook/internal/booking"
	"staybook/internal/domain"
)

type hotelLookup interface {
	GetHotelDetails(ctx context.Context, id string) (domain.Hotel, bool, error)
}

// BookingService creates and lists the signed-in user's bookings. The caller
// is taken from the session in ctx.
type BookingService struct {
	bookings  domain.BookingRepository
	hotels    hotelLookup
	publisher domain.EventPublisher
	timeout   time.Duration
	workers   int
}

type BookingOptions struct {
	Publisher domain.EventPublisher // optional
	Timeout   time.Duration
	Workers   int // hotel lookups in flight for LoadUserStays
}

func NewBookingService(b domain.BookingRepository, h hotelLookup, o BookingOptions) *BookingService {
	if o.Workers < 1 {
		o.Workers = 4
	}
	return &BookingService{
		bookings:  b,
		hotels:    h,
		publisher: o.Publisher,
		timeout:   o.Timeout,
		workers:   o.Workers,
	}
}

func identity(ctx context.Context) *domain.User {
	if s, ok := domain.SessionFrom(ctx); ok && s.User.ID != "" {
		u := s.User
		return &u
	}
	return nil
}

// CreateBooking validates p, prices it from the hotel's current rate and
// stores it. Nothing is written when validation fails.
func (s *BookingService) CreateBooking(ctx context.Context, p domain.CreateBookingParams) (domain.Booking, error) {
	const op = "create_booking"
	user := identity(ctx)
	nb, err := booking.Validate(p, user)
	if err != nil {
		return domain.Booking{}, reject(op, err)
	}

	h, found, err := s.hotels.GetHotelDetails(ctx, nb.HotelID)
	if err != nil {
		return domain.Booking{}, fail(op, domain.ErrBookingCreationFailed, err)
	}
	if !found {
		return domain.Booking{}, reject(op, domain.ErrHotelNotFound)
	}
	total, err := booking.TotalPrice(h.PricePerNight, nb.CheckIn, nb.CheckOut)
	if err != nil {
		return domain.Booking{}, reject(op, err)
	}
	if p.TotalPrice != 0 && p.TotalPrice != total {
		log.Warn().Str("hotel_id", h.ID).
			Int64("client_cents", p.TotalPrice.Cents()).
			Int64("server_cents", total.Cents()).
			Msg("client total differs from current rate, using server total")
	}
	nb.TotalPrice = total

	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	b, err := s.bookings.InsertBooking(cctx, nb)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Booking{}, reject(op, domain.ErrHotelNotFound)
		}
		return domain.Booking{}, fail(op, domain.ErrBookingCreationFailed, err)
	}
	observability.ObserveBookingCreated()
	log.Info().Str("booking_id", b.ID).Str("hotel_id", b.HotelID).Str("user_id", b.UserID).Msg("booking created")

	s.announce(ctx, b, h, user)
	return b, nil
}

// announce publishes booking.confirmed without holding up the caller.
func (s *BookingService) announce(ctx context.Context, b domain.Booking, h domain.Hotel, u *domain.User) {
	if s.publisher == nil {
		return
	}
	e := domain.BookingConfirmedEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		UserEmail:  u.Email,
		HotelID:    b.HotelID,
		HotelName:  h.Name,
		CheckIn:    booking.FormatDate(b.CheckIn),
		CheckOut:   booking.FormatDate(b.CheckOut),
		Guests:     b.Guests,
		TotalCents: b.TotalPrice.Cents(),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	pctx, cancel := bounded(context.WithoutCancel(ctx), s.timeout)
	go func() {
		defer cancel()
		if err := s.publisher.PublishBookingConfirmed(pctx, e); err != nil {
			log.Warn().Err(err).Str("booking_id", b.ID).Msg("publish booking.confirmed failed")
		}
	}()
}

// LoadUserBookings returns the caller's bookings, newest first. Without a
// session it returns an empty list rather than an error.
func (s *BookingService) LoadUserBookings(ctx context.Context) ([]domain.Booking, error) {
	user := identity(ctx)
	if user == nil {
		return []domain.Booking{}, nil
	}
	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	bs, err := s.bookings.ListBookingsByUser(cctx, user.ID)
	if err != nil {
		return nil, fail("load_user_bookings", domain.ErrBookingLoadFailed, err)
	}
	out := make([]domain.Booking, len(bs))
	copy(out, bs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetBooking returns one of the caller's bookings. Someone else's booking is
// reported the same as a missing one.
func (s *BookingService) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	const op = "get_booking"
	user := identity(ctx)
	if user == nil {
		return domain.Booking{}, reject(op, domain.ErrUnauthenticated)
	}
	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	b, found, err := s.bookings.GetBooking(cctx, id)
	if err != nil {
		return domain.Booking{}, fail(op, domain.ErrBookingLoadFailed, err)
	}
	if !found || b.UserID != user.ID {
		return domain.Booking{}, reject(op, domain.ErrBookingNotFound)
	}
	return b, nil
}

// LoadUserStays joins the caller's bookings with their hotels. Hotels are
// fetched once each, a few at a time; a failed lookup leaves Hotel nil.
func (s *BookingService) LoadUserStays(ctx context.Context) ([]domain.Stay, error) {
	bs, err := s.LoadUserBookings(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(bs))
	seen := make(map[string]struct{}, len(bs))
	for _, b := range bs {
		if _, ok := seen[b.HotelID]; !ok {
			seen[b.HotelID] = struct{}{}
			ids = append(ids, b.HotelID)
		}
	}

	var mu sync.Mutex
	hotels := make(map[string]domain.Hotel, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			h, found, err := s.hotels.GetHotelDetails(gctx, id)
			if err != nil {
				log.Warn().Err(err).Str("hotel_id", id).Msg("stay hotel lookup failed")
				return nil
			}
			if found {
				mu.Lock()
				hotels[id] = h
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.Stay, 0, len(bs))
	for _, b := range bs {
		st := domain.Stay{Booking: b, FormattedTotal: booking.FormatPrice(b.TotalPrice)}
		st.Nights, _ = booking.Nights(b.CheckIn, b.CheckOut)
		if h, ok := hotels[b.HotelID]; ok {
			st.Hotel = &h
		}
		out = append(out, st)
	}
	return out, nil
}

// Confirmation builds the shareable confirmation for one of the caller's bookings.
func (s *BookingService) Confirmation(ctx context.Context, id string) (booking.Confirmation, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return booking.Confirmation{}, err
	}
	h, found, err := s.hotels.GetHotelDetails(ctx, b.HotelID)
	if err != nil {
		return booking.Confirmation{}, fail("confirmation", domain.ErrBookingLoadFailed, err)
	}
	if !found {
		return booking.Confirmation{}, reject("confirmation", domain.ErrHotelNotFound)
	}
	return booking.NewConfirmation(b, h), nil
}
