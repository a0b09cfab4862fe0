package auth

import (
	"errors"
	"fmt"
	"time"

	"dubbing-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSession    = errors.New("no session")
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims is the session token body.
type Claims struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Image      string `json:"picture,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens.
type Tokens struct {
	secret      []byte
	ttl         time.Duration
	defaultLang string
	now         func() time.Time
}

// NewTokens returns an HS256 signer. defaultLang is applied to tokens that
// carry no target language.
func NewTokens(secret string, ttl time.Duration, defaultLang string) *Tokens {
	return &Tokens{
		secret:      []byte(secret),
		ttl:         ttl,
		defaultLang: defaultLang,
		now:         time.Now,
	}
}

// Issue stamps the session with fresh issue/expiry times and signs it.
func (t *Tokens) Issue(s models.Session) (string, models.Session, error) {
	now := t.now().UTC().Truncate(time.Second)
	s.IssuedAt = now
	s.ExpiresAt = now.Add(t.ttl)

	claims := Claims{
		Name:       s.Name,
		Email:      s.Email,
		Image:      s.Image,
		TargetLang: s.TargetLang,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", models.Session{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, s, nil
}

// Parse verifies a token and returns its session. A missing target language
// resolves to the default.
func (t *Tokens) Parse(raw string) (models.Session, error) {
	if raw == "" {
		return models.Session{}, ErrNoSession
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	s := models.Session{
		UserID:     claims.Subject,
		Name:       claims.Name,
		Email:      claims.Email,
		Image:      claims.Image,
		TargetLang: claims.TargetLang,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return s.WithDefaultLang(t.defaultLang), nil
}

// DefaultLang is the target language for sessions that have none.
func (t *Tokens) DefaultLang() string {
	return t.defaultLang
}

// TTL is the lifetime of issued tokens.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}
