package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// GetTranscript fetches the phrase list of a dub.
func (c *Client) GetTranscript(ctx context.Context, dubbingID, targetLang string) ([]string, error) {
	q := url.Values{}
	q.Set("dubbing_id", dubbingID)
	q.Set("target_lang", targetLang)
	data, err := c.do(ctx, "get-transcript", http.MethodGet, "/api/get-transcript?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return ParseTranscript(data)
}

// ParseTranscript reads a phrase-index → text object. Integer keys come first
// in ascending order, any other keys follow in document order. A plain array
// of phrases is accepted as well.
func ParseTranscript(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("get-transcript: %w: invalid JSON", ErrMalformedPayload)
	}
	root := gjson.ParseBytes(data)

	if root.IsArray() {
		var phrases []string
		root.ForEach(func(_, value gjson.Result) bool {
			phrases = append(phrases, value.String())
			return true
		})
		return nonNil(phrases), nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("get-transcript: %w: expected object", ErrMalformedPayload)
	}

	type indexed struct {
		idx  int
		text string
	}
	var numbered []indexed
	var named []string
	root.ForEach(func(key, value gjson.Result) bool {
		if idx, err := strconv.Atoi(key.Str); err == nil && idx >= 0 {
			numbered = append(numbered, indexed{idx: idx, text: value.String()})
		} else {
			named = append(named, value.String())
		}
		return true
	})
	sort.SliceStable(numbered, func(i, j int) bool { return numbered[i].idx < numbered[j].idx })

	phrases := make([]string, 0, len(numbered)+len(named))
	for _, n := range numbered {
		phrases = append(phrases, n.text)
	}
	return append(phrases, named...), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
