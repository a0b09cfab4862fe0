package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"dubbing-backend/internal/models"
)

// UserRecord is the body of the backend's user endpoints.
type UserRecord struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	TargetLang string `json:"target_lang"`
}

// RecordFromUser converts a stored user to the wire shape.
func RecordFromUser(u *models.User) UserRecord {
	return UserRecord{
		UserID:     u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		TargetLang: u.TargetLang,
	}
}

// CreateUser mirrors a new user record.
func (c *Client) CreateUser(ctx context.Context, rec UserRecord) error {
	_, err := c.do(ctx, "create-user", http.MethodPost, "/api/create-user", rec)
	return err
}

// UpdateUser overwrites the mirrored record for rec.UserID.
func (c *Client) UpdateUser(ctx context.Context, rec UserRecord) error {
	_, err := c.do(ctx, "update-user", http.MethodPut, "/api/update-user/"+url.PathEscape(rec.UserID), rec)
	return err
}

// GetUserByEmail looks a mirrored record up by email.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	q := url.Values{}
	q.Set("email", email)
	data, err := c.do(ctx, "get-user", http.MethodGet, "/api/get-user?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var rec UserRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("get-user: %w: %v", ErrMalformedPayload, err)
	}
	return &rec, nil
}
