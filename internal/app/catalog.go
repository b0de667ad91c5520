package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"staybook/internal/domain"
)

// CatalogImporter copies hotel content from Cupid into the hotel table.
type CatalogImporter struct {
	cupid    domain.CupidClient
	repo     domain.HotelRepository
	hotels   *HotelService // optional, for cache eviction
	defaults catalogDefaults
}

func NewCatalogImporter(c domain.CupidClient, r domain.HotelRepository, hotels *HotelService, rate domain.Money, rooms int) *CatalogImporter {
	if rooms < 1 {
		rooms = 1
	}
	return &CatalogImporter{cupid: c, repo: r, hotels: hotels, defaults: catalogDefaults{NightlyRate: rate, TotalRooms: rooms}}
}

// ImportReport counts outcomes of one ImportAll run.
type ImportReport struct {
	Imported int64
	Skipped  int64
	Failed   int64
}

// ImportHotel fetches and upserts a single property. Missing or forbidden
// properties are skipped (imported=false, nil error); anything else is returned.
func (s *CatalogImporter) ImportHotel(ctx context.Context, id int64) (imported bool, err error) {
	p, err := s.cupid.GetProperty(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Info().Int64("id", id).Msg("property not found, skipping")
			return false, nil
		case errors.Is(err, domain.ErrAccessDenied):
			log.Warn().Int64("id", id).Err(err).Msg("property not accessible, skipping")
			return false, nil
		}
		return false, err
	}

	h, ok := mapProperty(id, p, s.defaults)
	if !ok {
		log.Warn().Int64("id", id).Msg("property has no name, skipping")
		return false, nil
	}
	if err := s.repo.UpsertHotel(ctx, h); err != nil {
		return false, err
	}
	if s.hotels != nil {
		s.hotels.Forget(ctx, h.ID)
	}
	return true, nil
}

// ImportAll imports ids with at most workers requests in flight.
func (s *CatalogImporter) ImportAll(ctx context.Context, ids []int64, workers int) (ImportReport, error) {
	if workers < 1 {
		workers = 1
	}
	var rep ImportReport
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		// acquire before launching; release inside
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, errors.Wrap(err, "acquire worker")
		}
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := s.ImportHotel(ctx, id)
			switch {
			case err != nil:
				atomic.AddInt64(&rep.Failed, 1)
				log.Warn().Int64("id", id).Err(err).Msg("import failed")
			case ok:
				atomic.AddInt64(&rep.Imported, 1)
				log.Debug().Int64("id", id).Msg("import ok")
			default:
				atomic.AddInt64(&rep.Skipped, 1)
			}
		}(id)
	}
	wg.Wait()
	return rep, nil
}
