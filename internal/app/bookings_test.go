package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func newBookingService(bk *fakeBookings, pub domain.EventPublisher) *app.BookingService {
	hotels := app.NewHotelService(&fakeHotels{hotels: sampleHotels()}, nil, time.Minute, time.Second)
	return app.NewBookingService(bk, hotels, app.BookingOptions{Publisher: pub, Timeout: time.Second, Workers: 2})
}

func validParams() domain.CreateBookingParams {
	return domain.CreateBookingParams{
		HotelID:  "h1",
		CheckIn:  day("2026-05-10"),
		CheckOut: day("2026-05-13"),
		Guests:   2,
	}
}

func TestCreateBooking_OK(t *testing.T) {
	bk := &fakeBookings{}
	pub := newFakePublisher()
	svc := newBookingService(bk, pub)

	p := validParams()
	p.TotalPrice = domain.Cents(1) // stale client total is replaced
	b, err := svc.CreateBooking(signedIn(alice), p)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, b.UserID)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, domain.Cents(36000), b.TotalPrice)
	assert.Equal(t, day("2026-05-10"), b.CheckIn)

	select {
	case e := <-pub.got:
		assert.Equal(t, b.ID, e.BookingID)
		assert.Equal(t, alice.Email, e.UserEmail)
		assert.Equal(t, "Harbour View", e.HotelName)
		assert.Equal(t, "2026-05-13", e.CheckOut)
		assert.Equal(t, int64(36000), e.TotalCents)
	case <-time.After(2 * time.Second):
		t.Fatal("booking.confirmed not published")
	}
}

func TestCreateBooking_RejectsBeforeWriting(t *testing.T) {
	cases := []struct {
		name string
		ctx  context.Context
		mut  func(*domain.CreateBookingParams)
		want error
	}{
		{"signed out", context.Background(), func(*domain.CreateBookingParams) {}, domain.ErrUnauthenticated},
		{"no hotel", signedIn(alice), func(p *domain.CreateBookingParams) { p.HotelID = "" }, domain.ErrMissingField},
		{"same day", signedIn(alice), func(p *domain.CreateBookingParams) { p.CheckOut = p.CheckIn }, domain.ErrInvalidDateRange},
		{"inverted", signedIn(alice), func(p *domain.CreateBookingParams) { p.CheckOut = p.CheckIn.AddDate(0, 0, -1) }, domain.ErrInvalidDateRange},
		{"no guests", signedIn(alice), func(p *domain.CreateBookingParams) { p.Guests = 0 }, domain.ErrInvalidGuestCount},
		{"unknown hotel", signedIn(alice), func(p *domain.CreateBookingParams) { p.HotelID = "h404" }, domain.ErrHotelNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bk := &fakeBookings{}
			svc := newBookingService(bk, nil)
			p := validParams()
			tc.mut(&p)
			_, err := svc.CreateBooking(tc.ctx, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Empty(t, bk.inserted)
		})
	}
}

func TestCreateBooking_StoreFailure(t *testing.T) {
	bk := &fakeBookings{insertErr: errors.New("deadlock found when trying to get lock")}
	svc := newBookingService(bk, nil)

	_, err := svc.CreateBooking(signedIn(alice), validParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBookingCreationFailed))
	assert.Equal(t, "failed to create booking, please try again", err.Error())
}

func TestCreateBooking_HotelVanishedOnInsert(t *testing.T) {
	bk := &fakeBookings{insertErr: errors.Mark(errors.New("fk"), domain.ErrNotFound)}
	svc := newBookingService(bk, nil)

	_, err := svc.CreateBooking(signedIn(alice), validParams())
	assert.True(t, errors.Is(err, domain.ErrHotelNotFound))
}

func TestLoadUserBookings(t *testing.T) {
	bk := &fakeBookings{}
	svc := newBookingService(bk, nil)

	got, err := svc.LoadUserBookings(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateBooking(signedIn(alice), validParams())
		require.NoError(t, err)
	}
	bob := domain.User{ID: "u-bob", Email: "bob@example.com"}
	_, err = svc.CreateBooking(signedIn(bob), validParams())
	require.NoError(t, err)

	got, err = svc.LoadUserBookings(signedIn(alice))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt), "not newest first")
	}
	for _, b := range got {
		assert.Equal(t, alice.ID, b.UserID)
	}
}

func TestLoadUserBookings_Failure(t *testing.T) {
	svc := newBookingService(&fakeBookings{listErr: errors.New("i/o timeout")}, nil)
	_, err := svc.LoadUserBookings(signedIn(alice))
	assert.True(t, errors.Is(err, domain.ErrBookingLoadFailed))
}

func TestGetBooking_OwnerOnly(t *testing.T) {
	bk := &fakeBookings{}
	svc := newBookingService(bk, nil)
	b, err := svc.CreateBooking(signedIn(alice), validParams())
	require.NoError(t, err)

	got, err := svc.GetBooking(signedIn(alice), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.GetBooking(signedIn(domain.User{ID: "u-mallory"}), b.ID)
	assert.True(t, errors.Is(err, domain.ErrBookingNotFound))

	_, err = svc.GetBooking(context.Background(), b.ID)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestLoadUserStays(t *testing.T) {
	bk := &fakeBookings{}
	svc := newBookingService(bk, nil)
	_, err := svc.CreateBooking(signedIn(alice), validParams())
	require.NoError(t, err)
	p := validParams()
	p.HotelID = "h2"
	_, err = svc.CreateBooking(signedIn(alice), p)
	require.NoError(t, err)
	// a booking whose hotel has since left the catalogue
	bk.rows = append(bk.rows, domain.Booking{ID: "old", UserID: alice.ID, HotelID: "gone",
		CheckIn: day("2025-01-01"), CheckOut: day("2025-01-02"), Guests: 1, TotalPrice: domain.Cents(5000)})

	stays, err := svc.LoadUserStays(signedIn(alice))
	require.NoError(t, err)
	require.Len(t, stays, 3)

	byID := map[string]domain.Stay{}
	for _, s := range stays {
		byID[s.Booking.HotelID] = s
	}
	require.NotNil(t, byID["h2"].Hotel)
	assert.Equal(t, "Old Town Inn", byID["h2"].Hotel.Name)
	assert.Equal(t, 3, byID["h2"].Nights)
	assert.Equal(t, "$240.00", byID["h2"].FormattedTotal)
	assert.Nil(t, byID["gone"].Hotel)
	assert.Equal(t, "$50.00", byID["gone"].FormattedTotal)
}

func TestConfirmation(t *testing.T) {
	svc := newBookingService(&fakeBookings{}, nil)
	b, err := svc.CreateBooking(signedIn(alice), validParams())
	require.NoError(t, err)

	c, err := svc.Confirmation(signedIn(alice), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Nights)
	assert.Equal(t, "$360.00", c.FormattedTotal)
	assert.Equal(t, "Harbour View", c.Payload.Hotel)
}

func TestConfirmation_HotelLookupFailure(t *testing.T) {
	bk := &fakeBookings{}
	b, err := newBookingService(bk, nil).CreateBooking(signedIn(alice), validParams())
	require.NoError(t, err)

	down := &fakeHotels{hotels: sampleHotels(), err: errors.New("dial tcp 10.0.0.7:3306: refused")}
	hotels := app.NewHotelService(down, nil, time.Minute, time.Second)
	svc := app.NewBookingService(bk, hotels, app.BookingOptions{Timeout: time.Second})

	_, err = svc.Confirmation(signedIn(alice), b.ID)
	require.Error(t, err)
	assert.Equal(t, domain.KindBookingLoadFailed, domain.KindOf(err))
	assert.Equal(t, domain.ErrBookingLoadFailed.Msg, err.Error())
}
