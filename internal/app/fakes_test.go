package app_test

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"staybook/internal/domain"
)

// ---- hotels ----

type fakeHotels struct {
	mu      sync.Mutex
	hotels  []domain.Hotel
	err     error
	calls   int
	lastQ   domain.HotelsQuery
	upserts []domain.Hotel
}

func (f *fakeHotels) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, h)
	return f.err
}

func (f *fakeHotels) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastQ = q
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Hotel
	for _, h := range f.hotels {
		if q.City == "" || strings.Contains(strings.ToLower(h.City), q.City) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHotels) GetHotel(ctx context.Context, id string) (domain.Hotel, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Hotel{}, false, f.err
	}
	for _, h := range f.hotels {
		if h.ID == id {
			return h, true, nil
		}
	}
	return domain.Hotel{}, false, nil
}

// ---- bookings ----

type fakeBookings struct {
	mu        sync.Mutex
	rows      []domain.Booking
	insertErr error
	listErr   error
	inserted  []domain.NewBooking
}

func (f *fakeBookings) InsertBooking(ctx context.Context, nb domain.NewBooking) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, nb)
	if f.insertErr != nil {
		return domain.Booking{}, f.insertErr
	}
	b := domain.Booking{
		ID:         "bk-" + strconv.Itoa(len(f.rows)+1),
		UserID:     nb.UserID,
		HotelID:    nb.HotelID,
		CheckIn:    nb.CheckIn,
		CheckOut:   nb.CheckOut,
		Guests:     nb.Guests,
		TotalPrice: nb.TotalPrice,
		Status:     nb.Status,
		CreatedAt:  time.Date(2026, 1, 1, 12, 0, len(f.rows), 0, time.UTC),
	}
	f.rows = append(f.rows, b)
	return b, nil
}

func (f *fakeBookings) ListBookingsByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Booking
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) GetBooking(ctx context.Context, id string) (domain.Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return domain.Booking{}, false, f.listErr
	}
	for _, b := range f.rows {
		if b.ID == id {
			return b, true, nil
		}
	}
	return domain.Booking{}, false, nil
}

// ---- cache ----

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func (c *fakeCache) DelPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.store {
		if strings.HasPrefix(k, prefix) {
			delete(c.store, k)
			c.dels = append(c.dels, k)
		}
	}
	return nil
}

// ---- identity ----

type fakeIdP struct {
	mu        sync.Mutex
	calls     int
	err       error
	session   domain.Session
	listeners []func(domain.SessionEvent)
}

func (f *fakeIdP) call() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeIdP) SignUp(ctx context.Context, email, password, fullName string) (domain.Session, error) {
	if err := f.call(); err != nil {
		return domain.Session{}, err
	}
	s := f.session
	s.User.Email, s.User.FullName = email, fullName
	return s, nil
}

func (f *fakeIdP) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	if err := f.call(); err != nil {
		return domain.Session{}, err
	}
	return f.session, nil
}

func (f *fakeIdP) SignOut(ctx context.Context, s domain.Session) error { return f.call() }

func (f *fakeIdP) Refresh(ctx context.Context, s domain.Session) (domain.Session, error) {
	if err := f.call(); err != nil {
		return domain.Session{}, err
	}
	next := s
	next.ID, next.Token = s.ID+"-r", s.Token+"-r"
	return next, nil
}

func (f *fakeIdP) Verify(ctx context.Context, token string) (domain.Session, error) {
	return f.session, f.call()
}

func (f *fakeIdP) Subscribe(fn func(domain.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.listeners)
	f.listeners = append(f.listeners, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners[i] = nil
	}
}

func (f *fakeIdP) emit(e domain.SessionEvent) {
	f.mu.Lock()
	ls := append([]func(domain.SessionEvent){}, f.listeners...)
	f.mu.Unlock()
	for _, fn := range ls {
		if fn != nil {
			fn(e)
		}
	}
}

// ---- events ----

type fakePublisher struct {
	got chan domain.BookingConfirmedEvent
	err error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{got: make(chan domain.BookingConfirmedEvent, 4)}
}

func (p *fakePublisher) PublishBookingConfirmed(ctx context.Context, e domain.BookingConfirmedEvent) error {
	p.got <- e
	return p.err
}

// ---- cupid ----

type fakeCupid struct {
	docs map[int64]map[string]any
	errs map[int64]error
}

func (f *fakeCupid) GetProperty(ctx context.Context, id int64) (map[string]any, error) {
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.docs[id], nil
}

// ---- helpers ----

var alice = domain.User{ID: "u-alice", Email: "alice@example.com", FullName: "Alice"}

func signedIn(u domain.User) context.Context {
	return domain.WithSession(context.Background(), domain.Session{ID: "s-" + u.ID, Token: "tok-" + u.ID, User: u})
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }
