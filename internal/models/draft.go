package models

import (
	"time"

	"dubbing-backend/internal/clip"

	"github.com/google/uuid"
)

const (
	DraftEditing   = "editing"
	DraftRequested = "requested"
	DraftFailed    = "failed"
)

const (
	SourceLink   = "link"
	SourceUpload = "upload"
)

// VideoSource is what the user submitted: a remote link or an uploaded file.
type VideoSource struct {
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// Draft is the server-held state of one clip selection, from submission until
// a dub is requested.
type Draft struct {
	DraftID uuid.UUID `json:"draft_id"`
	UserID  string    `json:"user_id"`

	Source    VideoSource    `json:"source"`
	Selection clip.Selection `json:"selection"`

	Version int    `json:"version"`
	Status  string `json:"status"`

	LastRequestID string `json:"last_request_id,omitempty"`
	LastError     string `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
