package models

import "time"

// Session is the signed-in user's identity plus the one preference carried in
// the session token. It is a value: changes produce a new Session.
type Session struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Image      string `json:"image,omitempty"`
	TargetLang string `json:"target_lang"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WithTargetLang returns a copy of the session carrying lang.
func (s Session) WithTargetLang(lang string) Session {
	s.TargetLang = lang
	return s
}

// WithDefaultLang fills an empty target language with fallback.
func (s Session) WithDefaultLang(fallback string) Session {
	if s.TargetLang == "" {
		s.TargetLang = fallback
	}
	return s
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
