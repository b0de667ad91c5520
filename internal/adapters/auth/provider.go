// Package auth is the identity side of the persistence gateway: accounts with
// bcrypt password hashes, HS256 session tokens, revocation on sign-out and a
// listener hub for session changes.
package auth

import (
	"context"
	crand "crypto/rand"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"staybook/internal/domain"
)

const issuer = "staybook"

type Options struct {
	Secret     string        // HS256 key; random per process when empty
	SessionTTL time.Duration // default one hour
	BcryptCost int           // default bcrypt.DefaultCost
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type Provider struct {
	accounts domain.AccountStore
	revoked  domain.Cache
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	hub      *hub
}

func New(accounts domain.AccountStore, revoked domain.Cache, o Options) (*Provider, error) {
	secret := []byte(o.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := crand.Read(secret); err != nil {
			return nil, errors.Wrap(err, "generate session secret")
		}
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = time.Hour
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		accounts: accounts,
		revoked:  revoked,
		secret:   secret,
		ttl:      o.SessionTTL,
		cost:     o.BcryptCost,
		now:      time.Now,
		hub:      newHub(),
	}, nil
}

func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) (domain.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "hash password")
	}
	acc := domain.Account{
		User: domain.User{
			ID:        uuid.NewString(),
			Email:     strings.ToLower(strings.TrimSpace(email)),
			FullName:  strings.TrimSpace(fullName),
			CreatedAt: p.now().UTC().Truncate(time.Microsecond),
		},
		PasswordHash: string(hash),
	}
	if err := p.accounts.CreateAccount(ctx, acc); err != nil {
		return domain.Session{}, err
	}
	s, err := p.issue(acc.User)
	if err != nil {
		return domain.Session{}, err
	}
	p.hub.publish(domain.SessionEvent{Type: domain.SessionSignedIn, User: &s.User, Session: &s})
	return s, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	acc, ok, err := p.accounts.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.Session{}, err
	}
	if !ok {
		return domain.Session{}, domain.ErrCredentialsRejected
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Session{}, domain.ErrCredentialsRejected
		}
		return domain.Session{}, errors.Wrap(err, "compare password")
	}
	s, err := p.issue(acc.User)
	if err != nil {
		return domain.Session{}, err
	}
	p.hub.publish(domain.SessionEvent{Type: domain.SessionSignedIn, User: &s.User, Session: &s})
	return s, nil
}

func (p *Provider) SignOut(ctx context.Context, s domain.Session) error {
	if err := p.revoke(ctx, s); err != nil {
		return err
	}
	p.hub.publish(domain.SessionEvent{Type: domain.SessionSignedOut})
	return nil
}

// Refresh swaps s for a new session with a fresh expiry; s stops verifying.
func (p *Provider) Refresh(ctx context.Context, s domain.Session) (domain.Session, error) {
	next, err := p.issue(s.User)
	if err != nil {
		return domain.Session{}, err
	}
	if err := p.revoke(ctx, s); err != nil {
		return domain.Session{}, err
	}
	p.hub.publish(domain.SessionEvent{Type: domain.SessionTokenRefreshed, User: &next.User, Session: &next})
	return next, nil
}

func (p *Provider) Verify(ctx context.Context, token string) (domain.Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return domain.Session{}, errors.Mark(errors.Wrap(err, "parse session token"), domain.ErrSessionInvalid)
	}
	var gone bool
	if ok, err := p.revoked.Get(ctx, revokedKey(c.ID), &gone); err != nil {
		return domain.Session{}, errors.Wrap(err, "check revocation")
	} else if ok && gone {
		return domain.Session{}, domain.ErrSessionInvalid
	}
	return domain.Session{
		ID:        c.ID,
		Token:     token,
		User:      domain.User{ID: c.Subject, Email: c.Email, FullName: c.Name},
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func (p *Provider) Subscribe(fn func(domain.SessionEvent)) func() { return p.hub.subscribe(fn) }

func (p *Provider) issue(u domain.User) (domain.Session, error) {
	now := p.now().UTC()
	exp := now.Add(p.ttl)
	c := claims{
		Email: u.Email,
		Name:  u.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
	if err != nil {
		return domain.Session{}, errors.Wrap(err, "sign session token")
	}
	return domain.Session{ID: c.ID, Token: signed, User: u, ExpiresAt: c.ExpiresAt.Time}, nil
}

// revoke remembers s.ID until the token would have expired anyway.
func (p *Provider) revoke(ctx context.Context, s domain.Session) error {
	ttl := int(s.ExpiresAt.Sub(p.now()).Seconds()) + 1
	if ttl <= 1 {
		log.Debug().Str("session", s.ID).Msg("session already expired, nothing to revoke")
		return nil
	}
	return errors.Wrap(p.revoked.Set(ctx, revokedKey(s.ID), true, ttl), "revoke session")
}

func revokedKey(id string) string { return "session:revoked:" + id }
