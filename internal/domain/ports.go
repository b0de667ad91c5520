package domain

import "context"

type HotelRepository interface {
	// Write path, used by the catalog ingestor only.
	UpsertHotel(ctx context.Context, h Hotel) error

	// Read paths. ListHotels orders by rating, highest first.
	ListHotels(ctx context.Context, q HotelsQuery) ([]Hotel, error)
	GetHotel(ctx context.Context, id string) (Hotel, bool, error)
}

type BookingRepository interface {
	// InsertBooking stores one row and returns it with its issued id and timestamp.
	InsertBooking(ctx context.Context, b NewBooking) (Booking, error)
	// ListBookingsByUser orders by creation time, newest first.
	ListBookingsByUser(ctx context.Context, userID string) ([]Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, bool, error)
}

type AccountStore interface {
	// CreateAccount returns ErrAccountExists when the email is taken.
	CreateAccount(ctx context.Context, a Account) error
	GetAccountByEmail(ctx context.Context, email string) (Account, bool, error)
}

// IdentityProvider is the session side of the persistence gateway.
type IdentityProvider interface {
	// SignUp returns ErrAccountExists for a taken email.
	SignUp(ctx context.Context, email, password, fullName string) (Session, error)
	// SignIn returns ErrCredentialsRejected on a bad email/password pair.
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, s Session) error
	Refresh(ctx context.Context, s Session) (Session, error)
	// Verify resolves a bearer token; ErrSessionInvalid when expired or revoked.
	Verify(ctx context.Context, token string) (Session, error)
	// Subscribe registers fn for session changes and returns its deregistration.
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
}

type CupidClient interface {
	GetProperty(ctx context.Context, id int64) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	DelPrefix(ctx context.Context, prefix string) error
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, e BookingConfirmedEvent) error
}
