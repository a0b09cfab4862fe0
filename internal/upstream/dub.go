package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DubRequest asks the backend to dub [StartSec, EndSec) of a source video.
type DubRequest struct {
	SourceURL  string
	TargetLang string
	StartSec   int
	EndSec     int
}

// Query renders the request parameters in the order the backend documents them.
func (r DubRequest) Query() string {
	var b strings.Builder
	b.WriteString("source_url=")
	b.WriteString(url.QueryEscape(r.SourceURL))
	b.WriteString("&target_lang=")
	b.WriteString(url.QueryEscape(r.TargetLang))
	b.WriteString("&start_time=")
	b.WriteString(strconv.Itoa(r.StartSec))
	b.WriteString("&end_time=")
	b.WriteString(strconv.Itoa(r.EndSec))
	return b.String()
}

// RequestDub sends a single dub request. The response body is returned as-is;
// the backend does not document its shape.
func (c *Client) RequestDub(ctx context.Context, req DubRequest) (json.RawMessage, error) {
	data, err := c.do(ctx, "request-dub", http.MethodGet, "/api/request-dub?"+req.Query(), nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || !json.Valid(data) {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(data), nil
}
