package domain

import "github.com/cockroachdb/errors"

type Kind string

const (
	KindUnauthenticated       Kind = "unauthenticated"
	KindInvalidDateRange      Kind = "invalid_date_range"
	KindInvalidGuestCount     Kind = "invalid_guest_count"
	KindInvalidRate           Kind = "invalid_rate"
	KindMissingField          Kind = "missing_field"
	KindMissingCredentials    Kind = "missing_credentials"
	KindWeakPassword          Kind = "weak_password"
	KindAlreadyRegistered     Kind = "already_registered"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindBookingCreationFailed Kind = "booking_creation_failed"
	KindBookingLoadFailed     Kind = "booking_load_failed"
	KindBookingNotFound       Kind = "booking_not_found"
	KindHotelLoadFailed       Kind = "hotel_load_failed"
	KindHotelNotFound         Kind = "hotel_not_found"
	KindSignUpFailed          Kind = "sign_up_failed"
	KindSignInFailed          Kind = "sign_in_failed"
	KindSignOutFailed         Kind = "sign_out_failed"
	KindTransport             Kind = "transport"
)

// Error is a user-safe failure. Error() never includes the cause; Unwrap
// exposes it for logs.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so callers can test against the
// package-level values below regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Because returns a copy of e carrying cause.
func (e *Error) Because(cause error) error {
	return &Error{Kind: e.Kind, Msg: e.Msg, cause: errors.WithStack(cause)}
}

// WithMsg returns a copy of e with a more specific message.
func (e *Error) WithMsg(msg string) *Error {
	return &Error{Kind: e.Kind, Msg: msg, cause: e.cause}
}

var (
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated, Msg: "please sign in to continue"}
	ErrInvalidDateRange      = &Error{Kind: KindInvalidDateRange, Msg: "check-out date must be after check-in date"}
	ErrInvalidGuestCount     = &Error{Kind: KindInvalidGuestCount, Msg: "at least one guest is required"}
	ErrInvalidRate           = &Error{Kind: KindInvalidRate, Msg: "nightly rate cannot be negative"}
	ErrMissingField          = &Error{Kind: KindMissingField, Msg: "all fields are required"}
	ErrMissingCredentials    = &Error{Kind: KindMissingCredentials, Msg: "email and password are required"}
	ErrWeakPassword          = &Error{Kind: KindWeakPassword, Msg: "password must be at least 6 characters"}
	ErrPasswordTooLong       = &Error{Kind: KindWeakPassword, Msg: "password must be at most 72 bytes"}
	ErrAlreadyRegistered     = &Error{Kind: KindAlreadyRegistered, Msg: "this email is already registered, please sign in instead"}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials, Msg: "invalid email or password"}
	ErrBookingCreationFailed = &Error{Kind: KindBookingCreationFailed, Msg: "failed to create booking, please try again"}
	ErrBookingLoadFailed     = &Error{Kind: KindBookingLoadFailed, Msg: "failed to load bookings, please try again"}
	ErrBookingNotFound       = &Error{Kind: KindBookingNotFound, Msg: "booking not found"}
	ErrHotelLoadFailed       = &Error{Kind: KindHotelLoadFailed, Msg: "failed to load hotels, please try again"}
	ErrHotelNotFound         = &Error{Kind: KindHotelNotFound, Msg: "hotel not found"}
	ErrSignUpFailed          = &Error{Kind: KindSignUpFailed, Msg: "failed to sign up, please try again"}
	ErrSignInFailed          = &Error{Kind: KindSignInFailed, Msg: "failed to sign in, please try again"}
	ErrSignOutFailed         = &Error{Kind: KindSignOutFailed, Msg: "failed to sign out, please try again"}
	ErrTransport             = &Error{Kind: KindTransport, Msg: "service temporarily unavailable"}
)

// KindOf reports the kind of the first *Error in err's chain, or KindTransport.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// Gateway-level sentinels. Adapters return these; presenters translate them.
var (
	ErrNotFound            = errors.New("not found")
	ErrAccountExists       = errors.New("account already registered")
	ErrCredentialsRejected = errors.New("invalid login credentials")
	ErrSessionInvalid      = errors.New("session invalid or expired")
	ErrAccessDenied        = errors.New("access denied")
)
