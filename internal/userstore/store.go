// internal/userstore/store.go
package userstore

import (
	"context"
	"errors"
	"strings"

	"dubbing-backend/internal/models"

	"github.com/google/uuid"
)

// ErrUserNotFound: callers use errors.Is() instead of string matching
var ErrUserNotFound = errors.New("user not found")

// Store persists the user mirror. Implementations are selected by USER_STORE:
//
//	none     → Nop (JWT-only, nothing persisted)
//	postgres → Postgres
//	mongo    → Mongo
//	http     → Mirror (dubbing backend's user endpoints)
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetTargetLang(ctx context.Context, user *models.User) error
}

// UserID derives the stable id for an email, so every backend agrees on it
// even when nothing is persisted.
func UserID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+NormalizeEmail(email)))
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Nop is the JWT-only store.
type Nop struct{}

func (Nop) FindByEmail(context.Context, string) (*models.User, error) { return nil, ErrUserNotFound }
func (Nop) Create(context.Context, *models.User) error                { return nil }
func (Nop) SetTargetLang(context.Context, *models.User) error         { return nil }
