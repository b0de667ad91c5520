package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"staybook/internal/booking"
	"staybook/internal/domain"
)

// HotelService backs the hotel catalogue screens: the full list, the city
// search and the details page. Reads go through the cache when one is set.
type HotelService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
	timeout  time.Duration
}

func NewHotelService(r domain.HotelRepository, c domain.Cache, ttl, timeout time.Duration) *HotelService {
	return &HotelService{repo: r, cache: c, cacheTTL: ttl, timeout: timeout}
}

func hotelKey(id string) string { return "hotel:" + id }

func hotelsKey(city string) string { return "hotels:city:" + city }

// LoadAllHotels returns every hotel, highest rated first.
func (s *HotelService) LoadAllHotels(ctx context.Context) ([]domain.Hotel, error) {
	return s.list(ctx, "load_all_hotels", "")
}

// SearchHotels filters by a case-insensitive substring of the city. A blank
// city is the same as LoadAllHotels.
func (s *HotelService) SearchHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	return s.list(ctx, "search_hotels", strings.ToLower(strings.TrimSpace(q.City)))
}

func (s *HotelService) list(ctx context.Context, op, city string) ([]domain.Hotel, error) {
	key := hotelsKey(city)
	var out []domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok && out != nil {
			return out, nil
		}
	}

	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	hs, err := s.repo.ListHotels(cctx, domain.HotelsQuery{City: city})
	if err != nil {
		return nil, fail(op, domain.ErrHotelLoadFailed, err)
	}
	if hs == nil {
		hs = []domain.Hotel{}
	}

	// copy so later edits by the caller never reach the cached value
	out = make([]domain.Hotel, len(hs))
	copy(out, hs)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// GetHotelDetails returns the hotel, or found=false when no such id exists.
// Transport failures are reported as ErrHotelLoadFailed.
func (s *HotelService) GetHotelDetails(ctx context.Context, id string) (domain.Hotel, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Hotel{}, false, nil
	}
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, true, nil
		}
	}

	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	h, found, err := s.repo.GetHotel(cctx, id)
	if err != nil {
		return domain.Hotel{}, false, fail("get_hotel_details", domain.ErrHotelLoadFailed, err)
	}
	if !found {
		return domain.Hotel{}, false, nil
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, true, nil
}

// Quote prices a stay at hotel id without booking it.
func (s *HotelService) Quote(ctx context.Context, id string, checkIn, checkOut time.Time) (booking.Quote, error) {
	if _, err := booking.Nights(checkIn, checkOut); err != nil {
		return booking.Quote{}, reject("quote", err)
	}
	h, found, err := s.GetHotelDetails(ctx, id)
	if err != nil {
		return booking.Quote{}, err
	}
	if !found {
		return booking.Quote{}, reject("quote", domain.ErrHotelNotFound)
	}
	q, err := booking.NewQuote(h, checkIn, checkOut)
	if err != nil {
		return booking.Quote{}, reject("quote", err)
	}
	return q, nil
}

// Forget drops the cached copies touched by a catalogue write.
func (s *HotelService) Forget(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Str("hotel_id", id).Msg("cache evict failed")
	}
	if err := s.cache.DelPrefix(ctx, hotelsKey("")); err != nil {
		log.Warn().Err(err).Msg("cache evict failed")
	}
}
