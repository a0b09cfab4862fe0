// internal/service/session_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/language"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/userstore"
)

// Sentinel errors: callers use errors.Is() instead of string matching
var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrUnauthorized  = errors.New("unauthorized: draft belongs to another user")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEntryNotFound = errors.New("library entry not found")
	ErrConflict      = errors.New("draft is being changed by another request")
)

// storeTimeout bounds each call to the user store.
const storeTimeout = 5 * time.Second

// TokenIssuer signs sessions. *auth.Tokens satisfies it.
type TokenIssuer interface {
	Issue(s models.Session) (string, models.Session, error)
}

type SessionService struct {
	Users       userstore.Store
	Tokens      TokenIssuer
	DefaultLang string
	Log         *slog.Logger
}

// SignIn turns an OAuth identity into a signed session.
//
// Returning users keep their stored target language; first-time users get the
// default and a new user record. The store is best effort: if it is down the
// user still signs in with the default language.
func (s *SessionService) SignIn(ctx context.Context, id auth.Identity) (string, models.Session, error) {
	if id.Email == "" {
		return "", models.Session{}, errors.New("sign in: identity has no email")
	}

	user := s.findOrCreateUser(ctx, id)

	session := models.Session{
		UserID:     user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		Image:      user.Image,
		TargetLang: user.TargetLang,
	}.WithDefaultLang(s.DefaultLang)

	return s.Tokens.Issue(session)
}

func (s *SessionService) findOrCreateUser(ctx context.Context, id auth.Identity) *models.User {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	email := userstore.NormalizeEmail(id.Email)

	// Step 1: Look for an existing user with this email
	existing, err := s.Users.FindByEmail(ctx, email)
	if err == nil {
		if existing.Image == "" {
			existing.Image = id.Picture
		}
		if existing.Name == "" {
			existing.Name = id.Name
		}
		if !language.Supported(existing.TargetLang) {
			existing.TargetLang = s.DefaultLang
		}
		existing.TargetLang = language.Normalize(existing.TargetLang)
		return existing
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:         userstore.UserID(email),
		Name:       id.Name,
		Email:      email,
		Image:      id.Picture,
		TargetLang: s.DefaultLang,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if !errors.Is(err, userstore.ErrUserNotFound) {
		// Store unreachable: sign in anyway, do not try to create.
		s.logger().Warn("user lookup failed", "email", email, "error", err)
		return user
	}

	// Step 2: No user found, create one
	if err := s.Users.Create(ctx, user); err != nil {
		s.logger().Warn("user create failed", "email", email, "error", err)
	}
	return user
}

func (s *SessionService) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
