package userstore

import (
	"context"
	"errors"
	"net/http"

	"dubbing-backend/internal/models"
	"dubbing-backend/internal/upstream"

	"github.com/google/uuid"
)

// MirrorClient is the part of the dubbing backend client the mirror uses.
type MirrorClient interface {
	CreateUser(ctx context.Context, rec upstream.UserRecord) error
	UpdateUser(ctx context.Context, rec upstream.UserRecord) error
	GetUserByEmail(ctx context.Context, email string) (*upstream.UserRecord, error)
}

// Mirror stores users through the dubbing backend's user endpoints.
type Mirror struct {
	Client MirrorClient
}

func (s *Mirror) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	rec, err := s.Client.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, notFound(err)
	}

	id, perr := uuid.Parse(rec.UserID)
	if perr != nil {
		id = UserID(rec.Email)
	}
	return &models.User{
		ID:         id,
		Name:       rec.Name,
		Email:      rec.Email,
		TargetLang: rec.TargetLang,
	}, nil
}

func (s *Mirror) Create(ctx context.Context, user *models.User) error {
	return s.Client.CreateUser(ctx, upstream.RecordFromUser(user))
}

func (s *Mirror) SetTargetLang(ctx context.Context, user *models.User) error {
	if err := s.Client.UpdateUser(ctx, upstream.RecordFromUser(user)); err != nil {
		return notFound(err)
	}
	return nil
}

// notFound maps a 404 from the backend to ErrUserNotFound.
func notFound(err error) error {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	return err
}
