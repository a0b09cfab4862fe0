package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"dubbing-backend/internal/metrics"
	"dubbing-backend/internal/models"
	"dubbing-backend/internal/requests"
	"dubbing-backend/internal/upstream"

	"github.com/google/uuid"
)

const kindDub = "dub"

// DubClient sends dub requests to the dubbing backend.
type DubClient interface {
	RequestDub(ctx context.Context, req upstream.DubRequest) (json.RawMessage, error)
}

// DubResult is what a successful request reports back to the client.
type DubResult struct {
	RequestID string              `json:"request_id"`
	Request   upstream.DubRequest `json:"-"`
	Query     string              `json:"query"`
	Draft     *models.Draft       `json:"draft"`
	Response  json.RawMessage     `json:"response"`
}

type DubService struct {
	Drafts  *DraftService
	Client  DubClient
	Tracker requests.Tracker
	Log     *slog.Logger
}

// RequestDub sends one request for the draft's selected range in the
// session's target language. It is never retried. If another dub request
// from the same user started while this one was in flight, the outcome is
// discarded and requests.ErrSuperseded is returned.
//
// The 40 second limit is enforced when a handle moves. A draft whose handles
// were never moved still covers the whole source and is sent as is, however
// long it is.
func (s *DubService) RequestDub(ctx context.Context, session models.Session, draftID uuid.UUID) (*DubResult, error) {
	draft, err := s.Drafts.Get(ctx, draftID, session.UserID)
	if err != nil {
		return nil, err
	}

	start, end := draft.Selection.Range()
	if !draft.Selection.Valid() || end <= start {
		return nil, fmt.Errorf("%w: selected clip is shorter than one second", ErrInvalidInput)
	}

	req := upstream.DubRequest{
		SourceURL:  draft.Source.URL,
		TargetLang: session.TargetLang,
		StartSec:   start,
		EndSec:     end,
	}

	ticket, err := s.Tracker.Begin(ctx, requests.Key(kindDub, session.UserID))
	if err != nil {
		return nil, fmt.Errorf("track dub request: %w", err)
	}

	if _, err := s.Drafts.update(ctx, draftID, session.UserID, func(d *models.Draft) {
		d.Status = models.DraftRequested
		d.LastRequestID = ticket.ID
		d.LastError = ""
	}); err != nil {
		return nil, err
	}

	log := s.logger().With("request_id", ticket.ID, "draft_id", draftID, "user_id", session.UserID)
	log.Info("requesting dub",
		"target_lang", req.TargetLang, "start_time", req.StartSec, "end_time", req.EndSec)

	resp, callErr := s.Client.RequestDub(ctx, req)

	latest, err := s.Tracker.Latest(ctx, ticket)
	if err != nil {
		log.Warn("could not check for newer dub request", "error", err)
		latest = true
	}
	if !latest {
		metrics.SupersededResultsTotal.WithLabelValues(kindDub).Inc()
		log.Info("dub result discarded, newer request in flight", "upstream_error", callErr)
		return nil, requests.ErrSuperseded
	}

	if callErr != nil {
		metrics.DubRequestsTotal.WithLabelValues("error").Inc()
		log.Error("dub request failed", "error", callErr)
		if _, err := s.Drafts.update(ctx, draftID, session.UserID, func(d *models.Draft) {
			d.Status = models.DraftFailed
			d.LastError = callErr.Error()
		}); err != nil {
			log.Warn("could not record dub failure on draft", "error", err)
		}
		return nil, fmt.Errorf("request dub: %w", callErr)
	}

	metrics.DubRequestsTotal.WithLabelValues("ok").Inc()
	log.Info("dub requested")

	current, err := s.Drafts.Get(ctx, draftID, session.UserID)
	if err != nil {
		current = draft
	}
	return &DubResult{
		RequestID: ticket.ID,
		Request:   req,
		Query:     req.Query(),
		Draft:     current,
		Response:  resp,
	}, nil
}

func (s *DubService) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
