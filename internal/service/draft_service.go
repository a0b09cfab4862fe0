package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"dubbing-backend/internal/clip"
	"dubbing-backend/internal/draftstore"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/validation"

	"github.com/google/uuid"
)

// DraftInput is a video submission: exactly one of SourceURL and UploadURL.
type DraftInput struct {
	SourceURL   string  `json:"source_url"`
	UploadURL   string  `json:"upload_url"`
	Filename    string  `json:"filename"`
	DurationSec float64 `json:"duration_sec"`
}

const updateAttempts = 3

type DraftService struct {
	Store draftstore.Store
	now   func() time.Time
}

func NewDraftService(store draftstore.Store) *DraftService {
	return &DraftService{Store: store, now: time.Now}
}

// Create starts a clip selection covering the whole video.
func (s *DraftService) Create(ctx context.Context, userID string, in DraftInput) (*models.Draft, error) {
	if err := validation.ValidateSource(in.SourceURL, in.UploadURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validation.ValidateDuration(in.DurationSec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	source := models.VideoSource{Kind: models.SourceLink, URL: strings.TrimSpace(in.SourceURL)}
	if source.URL == "" {
		source = models.VideoSource{Kind: models.SourceUpload, URL: strings.TrimSpace(in.UploadURL)}
		if name := strings.TrimSpace(in.Filename); name != "" {
			source.Filename = path.Base(name)
		}
	}

	now := s.now().UTC()
	draft := &models.Draft{
		DraftID:   uuid.New(),
		UserID:    userID,
		Source:    source,
		Selection: clip.New(in.DurationSec),
		Version:   1,
		Status:    models.DraftEditing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return draft, nil
}

// Get fetches a draft and verifies ownership.
// Passing userID ensures one user cannot read another user's draft.
func (s *DraftService) Get(ctx context.Context, id uuid.UUID, userID string) (*models.Draft, error) {
	draft, err := s.Store.Get(ctx, id)
	if errors.Is(err, draftstore.ErrNotFound) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	// Ownership check: draft must belong to the requesting user
	if draft.UserID != userID {
		return nil, ErrUnauthorized
	}
	return draft, nil
}

// Apply runs events through the clip reducer and bumps the version counter.
// Nothing is applied if any event is invalid.
func (s *DraftService) Apply(ctx context.Context, id uuid.UUID, userID string, events []clip.Event) (*models.Draft, error) {
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	return s.update(ctx, id, userID, func(d *models.Draft) {
		d.Selection = clip.ReduceAll(d.Selection, events...)
	})
}

// Delete permanently removes a draft.
func (s *DraftService) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	err := s.Store.Delete(ctx, id)
	if errors.Is(err, draftstore.ErrNotFound) {
		return ErrDraftNotFound
	}
	return err
}

// update is a read-modify-write guarded by Version. On a concurrent write fn
// is re-applied to the fresh draft, up to updateAttempts times.
func (s *DraftService) update(ctx context.Context, id uuid.UUID, userID string, fn func(*models.Draft)) (*models.Draft, error) {
	for attempt := 0; attempt < updateAttempts; attempt++ {
		draft, err := s.Get(ctx, id, userID)
		if err != nil {
			return nil, err
		}
		prev := draft.Version
		fn(draft)
		draft.Version = prev + 1
		draft.UpdatedAt = s.now().UTC()

		err = s.Store.Update(ctx, draft, prev)
		switch {
		case err == nil:
			return draft, nil
		case errors.Is(err, draftstore.ErrConflict):
			continue
		case errors.Is(err, draftstore.ErrNotFound):
			return nil, ErrDraftNotFound
		default:
			return nil, fmt.Errorf("save draft: %w", err)
		}
	}
	return nil, ErrConflict
}
