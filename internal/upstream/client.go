package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMalformedPayload is returned when the dubbing backend answers with JSON of the wrong shape.
var ErrMalformedPayload = errors.New("malformed upstream payload")

// StatusError is a non-2xx answer from the dubbing backend.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the external dubbing backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the dubbing backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}
