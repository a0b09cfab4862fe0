package service

import (
	"context"
	"fmt"
	"log/slog"

	"dubbing-backend/internal/clip"
	"dubbing-backend/internal/language"
	"dubbing-backend/internal/metrics"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/requests"
)

const kindLibrary = "library"

// LibraryClient reads the dubbing backend's index.
type LibraryClient interface {
	GetEntries(ctx context.Context, targetLang string) ([]models.LibraryEntry, error)
	GetTranscript(ctx context.Context, dubbingID, targetLang string) ([]string, error)
}

type LibraryService struct {
	Client  LibraryClient
	Tracker requests.Tracker
	Log     *slog.Logger
}

// List fetches the whole listing for lang. It never fails: errors are
// reported in Listing.Error next to an empty entry list, and the caller may
// refresh again. A refresh overtaken by a newer one from the same user is
// reported the same way.
func (s *LibraryService) List(ctx context.Context, userID, lang string) models.Listing {
	listing := models.Listing{
		TargetLang: lang,
		Language:   language.DisplayName(lang),
		Entries:    []models.LibraryEntry{},
	}

	ticket, err := s.Tracker.Begin(ctx, requests.Key(kindLibrary, userID))
	tracked := err == nil
	if err != nil {
		s.logger().Warn("library refresh untracked", "user_id", userID, "error", err)
	}

	entries, err := s.Client.GetEntries(ctx, lang)

	if tracked {
		if latest, lerr := s.Tracker.Latest(ctx, ticket); lerr == nil && !latest {
			metrics.SupersededResultsTotal.WithLabelValues(kindLibrary).Inc()
			s.logger().Info("library result discarded, newer refresh in flight", "user_id", userID)
			listing.Error = requests.ErrSuperseded.Error()
			return listing
		}
	}

	if err != nil {
		s.logger().Warn("library refresh failed", "user_id", userID, "target_lang", lang, "error", err)
		listing.Error = err.Error()
		return listing
	}
	if entries != nil {
		listing.Entries = entries
	}
	return listing
}

// Entry looks up one dub in a fresh listing.
func (s *LibraryService) Entry(ctx context.Context, lang, dubbingID string) (*models.EntryDetail, error) {
	entries, err := s.Client.GetEntries(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}
	for _, e := range entries {
		if e.DubbingID == dubbingID {
			return &models.EntryDetail{
				LibraryEntry: e,
				Duration:     clip.FormatTime(e.ExpectedDurationSec),
				Language:     language.DisplayName(e.TargetLang),
			}, nil
		}
	}
	return nil, ErrEntryNotFound
}

// Transcript returns the ordered phrases of a dub.
func (s *LibraryService) Transcript(ctx context.Context, lang, dubbingID string) (*models.Transcript, error) {
	phrases, err := s.Client.GetTranscript(ctx, dubbingID, lang)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	if phrases == nil {
		phrases = []string{}
	}
	return &models.Transcript{DubbingID: dubbingID, TargetLang: lang, Phrases: phrases}, nil
}

func (s *LibraryService) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
