package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dubbing-backend/internal/models"

	"github.com/tidwall/gjson"
)

// Missing-field defaults for library entries.
const (
	DefaultDubbingID = "N/A"
	namePrefix       = "Video "
)

// GetEntries lists dubbed videos for a target language.
func (c *Client) GetEntries(ctx context.Context, targetLang string) ([]models.LibraryEntry, error) {
	q := url.Values{}
	q.Set("target_lang", targetLang)
	data, err := c.do(ctx, "get-entries", http.MethodGet, "/api/get-entries?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return ParseEntries(data, targetLang)
}

// ParseEntries turns the raw index payload into fully populated entries.
//
// Field policy, applied when a field is absent, null, false or empty:
//   - dubbing_id: "N/A"
//   - expected_duration_sec: 0 (negative values are also 0)
//   - target_lang: the requested language
//   - dubbedIpfsUrl: ""
//   - name: "Video <dubbing_id>"
//
// Only a payload that is not a JSON array is an error.
func ParseEntries(data []byte, requestedLang string) ([]models.LibraryEntry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("get-entries: %w: invalid JSON", ErrMalformedPayload)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("get-entries: %w: expected array", ErrMalformedPayload)
	}

	items := root.Array()
	entries := make([]models.LibraryEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, parseEntry(item, requestedLang))
	}
	return entries, nil
}

func parseEntry(item gjson.Result, requestedLang string) models.LibraryEntry {
	id := stringOr(item.Get("data.dubbing_id"), DefaultDubbingID)

	duration := item.Get("data.expected_duration_sec").Float()
	if duration < 0 {
		duration = 0
	}

	return models.LibraryEntry{
		DubbingID:           id,
		ExpectedDurationSec: duration,
		TargetLang:          stringOr(item.Get("data.target_lang"), requestedLang),
		DubbedURL:           stringOr(item.Get("dubbedIpfsUrl"), ""),
		Name:                stringOr(item.Get("name"), namePrefix+id),
	}
}

// stringOr returns the value as a string unless it is falsy.
func stringOr(r gjson.Result, fallback string) string {
	switch r.Type {
	case gjson.Null, gjson.False:
		return fallback
	case gjson.String:
		if r.Str == "" {
			return fallback
		}
		return r.Str
	case gjson.Number:
		if r.Num == 0 {
			return fallback
		}
		return r.Raw
	case gjson.True:
		return r.Raw
	default:
		// objects and arrays are not usable as labels
		return fallback
	}
}
