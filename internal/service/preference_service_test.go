package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dubbing-backend/internal/auth"
	"dubbing-backend/internal/language"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/userstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSession() models.Session {
	return models.Session{
		UserID:     uuid.NewString(),
		Name:       "Ada",
		Email:      "ada@example.com",
		TargetLang: "en",
	}
}

func newPreferenceService(store *MockUserStore) (*PreferenceService, *auth.Tokens) {
	tokens := auth.NewTokens("test-secret", time.Hour, "en")
	return &PreferenceService{Users: store, Tokens: tokens}, tokens
}

func TestUpdate_PersistsAndReissues(t *testing.T) {
	store := new(MockUserStore)
	store.On("SetTargetLang", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.TargetLang == "es" && u.Email == "ada@example.com"
	})).Return(nil)

	svc, tokens := newPreferenceService(store)
	session := testSession()
	token, next, err := svc.Update(context.Background(), session, "ES")
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, "es", next.TargetLang)
	assert.Equal(t, "en", session.TargetLang, "original session is not mutated")

	parsed, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "es", parsed.TargetLang)
	store.AssertExpectations(t)
}

func TestUpdate_MirrorFailureDoesNotRollBack(t *testing.T) {
	store := new(MockUserStore)
	store.On("SetTargetLang", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	svc, _ := newPreferenceService(store)
	_, next, err := svc.Update(context.Background(), testSession(), "ja")
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, "ja", next.TargetLang)
	store.AssertExpectations(t)
}

func TestUpdate_CreatesMissingUser(t *testing.T) {
	store := new(MockUserStore)
	store.On("SetTargetLang", mock.Anything, mock.Anything).Return(userstore.ErrUserNotFound)
	store.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.TargetLang == "fr" && !u.CreatedAt.IsZero()
	})).Return(nil)

	svc, _ := newPreferenceService(store)
	_, _, err := svc.Update(context.Background(), testSession(), "fr")
	svc.Wait()

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUpdate_CanceledRequestStillPersists(t *testing.T) {
	store := new(MockUserStore)
	store.On("SetTargetLang", mock.Anything, mock.Anything).Return(nil)

	svc, _ := newPreferenceService(store)
	ctx, cancel := context.WithCancel(context.Background())
	_, _, err := svc.Update(ctx, testSession(), "de")
	cancel()
	svc.Wait()

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestUpdate_RejectsUnsupportedLanguage(t *testing.T) {
	store := new(MockUserStore)
	svc, _ := newPreferenceService(store)

	_, _, err := svc.Update(context.Background(), testSession(), "xx")
	svc.Wait()

	assert.ErrorIs(t, err, language.ErrInvalidLanguage)
	store.AssertNotCalled(t, "SetTargetLang", mock.Anything, mock.Anything)
}
