package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dubbing-backend/internal/language"
	"dubbing-backend/internal/metrics"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/userstore"

	"github.com/google/uuid"
)

// PreferenceService changes the target language carried in a session.
type PreferenceService struct {
	Users  userstore.Store
	Tokens TokenIssuer
	Log    *slog.Logger

	wg sync.WaitGroup
}

// Update validates lang and returns the reissued session straight away. The
// user store is updated in the background; a failure there is logged and
// counted but never undoes the change.
func (s *PreferenceService) Update(ctx context.Context, session models.Session, lang string) (string, models.Session, error) {
	code, err := language.Validate(lang)
	if err != nil {
		return "", models.Session{}, err
	}

	token, next, err := s.Tokens.Issue(session.WithTargetLang(code))
	if err != nil {
		return "", models.Session{}, fmt.Errorf("reissue session: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
		defer cancel()
		if err := s.persist(mctx, next); err != nil {
			metrics.PreferenceMirrorFailures.Inc()
			s.logger().Warn("target language not persisted",
				"user_id", next.UserID, "target_lang", code, "error", err)
		}
	}()

	return token, next, nil
}

// Wait blocks until background writes started by Update have finished.
func (s *PreferenceService) Wait() {
	s.wg.Wait()
}

func (s *PreferenceService) persist(ctx context.Context, session models.Session) error {
	id, err := uuid.Parse(session.UserID)
	if err != nil {
		id = userstore.UserID(session.Email)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:         id,
		Name:       session.Name,
		Email:      userstore.NormalizeEmail(session.Email),
		Image:      session.Image,
		TargetLang: session.TargetLang,
		UpdatedAt:  now,
	}

	err = s.Users.SetTargetLang(ctx, user)
	if errors.Is(err, userstore.ErrUserNotFound) {
		user.CreatedAt = now
		return s.Users.Create(ctx, user)
	}
	return err
}

func (s *PreferenceService) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
