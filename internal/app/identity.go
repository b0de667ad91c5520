package app

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

const (
	minPasswordLen = 6  // characters
	maxPasswordLen = 72 // bytes, the bcrypt input limit
)

// IdentityService is the sign-up / sign-in flow in front of the identity
// provider. Input checks run before any call leaves the process.
type IdentityService struct {
	idp     domain.IdentityProvider
	timeout time.Duration
}

func NewIdentityService(idp domain.IdentityProvider, timeout time.Duration) *IdentityService {
	return &IdentityService{idp: idp, timeout: timeout}
}

func (s *IdentityService) HandleSignUp(ctx context.Context, email, password, fullName string) (domain.Session, error) {
	const op = "sign_up"
	email = strings.TrimSpace(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return domain.Session{}, reject(op, domain.ErrMissingField)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return domain.Session{}, reject(op, domain.ErrWeakPassword)
	}
	if len(password) > maxPasswordLen {
		return domain.Session{}, reject(op, domain.ErrPasswordTooLong)
	}

	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	sess, err := s.idp.SignUp(cctx, email, password, fullName)
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return domain.Session{}, reject(op, domain.ErrAlreadyRegistered)
		}
		return domain.Session{}, fail(op, domain.ErrSignUpFailed, err)
	}
	log.Info().Str("user_id", sess.User.ID).Msg("account created")
	return sess, nil
}

func (s *IdentityService) HandleSignIn(ctx context.Context, email, password string) (domain.Session, error) {
	const op = "sign_in"
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Session{}, reject(op, domain.ErrMissingCredentials)
	}

	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	sess, err := s.idp.SignIn(cctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsRejected) {
			return domain.Session{}, reject(op, domain.ErrInvalidCredentials)
		}
		return domain.Session{}, fail(op, domain.ErrSignInFailed, err)
	}
	return sess, nil
}

// HandleSignOut ends the session in ctx. Signing out with no session is a no-op.
func (s *IdentityService) HandleSignOut(ctx context.Context) error {
	sess, ok := domain.SessionFrom(ctx)
	if !ok {
		return nil
	}
	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	if err := s.idp.SignOut(cctx, sess); err != nil {
		return fail("sign_out", domain.ErrSignOutFailed, err)
	}
	return nil
}

// RefreshSession swaps the session in ctx for a fresh one.
func (s *IdentityService) RefreshSession(ctx context.Context) (domain.Session, error) {
	const op = "refresh_session"
	sess, ok := domain.SessionFrom(ctx)
	if !ok {
		return domain.Session{}, reject(op, domain.ErrUnauthenticated)
	}
	cctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	next, err := s.idp.Refresh(cctx, sess)
	if err != nil {
		if errors.Is(err, domain.ErrSessionInvalid) {
			return domain.Session{}, reject(op, domain.ErrUnauthenticated)
		}
		return domain.Session{}, fail(op, domain.ErrTransport, err)
	}
	return next, nil
}

// GetCurrentUser returns the signed-in user, or nil.
func (s *IdentityService) GetCurrentUser(ctx context.Context) *domain.User {
	if sess, ok := domain.SessionFrom(ctx); ok && sess.User.ID != "" {
		u := sess.User
		return &u
	}
	return nil
}

// SetupAuthListener calls onChange with the current user (nil after a
// sign-out) on every session change, until the returned func is called.
func (s *IdentityService) SetupAuthListener(onChange func(*domain.User)) (unsubscribe func()) {
	return s.idp.Subscribe(func(e domain.SessionEvent) {
		if e.Type == domain.SessionSignedOut {
			onChange(nil)
			return
		}
		if e.User != nil {
			u := *e.User
			onChange(&u)
			return
		}
		if e.Session != nil {
			u := e.Session.User
			onChange(&u)
		}
	})
}
