package domain

import (
	"context"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is the stored identity record; PasswordHash never leaves the identity adapter.
type Account struct {
	User
	PasswordHash string
}

type Session struct {
	ID        string
	Token     string
	User      User
	ExpiresAt time.Time
}

type SessionEventType string

const (
	SessionSignedIn       SessionEventType = "signed_in"
	SessionSignedOut      SessionEventType = "signed_out"
	SessionTokenRefreshed SessionEventType = "token_refreshed"
)

// SessionEvent is delivered to listeners on every session state change.
// User is nil after a sign-out.
type SessionEvent struct {
	Type    SessionEventType
	User    *User
	Session *Session
}

type sessionKey struct{}

// WithSession attaches the caller's session to ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx, if any.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
