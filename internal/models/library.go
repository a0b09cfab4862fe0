package models

// LibraryEntry is one dubbed video in the external index, with every field populated.
type LibraryEntry struct {
	DubbingID           string  `json:"dubbing_id"`
	ExpectedDurationSec float64 `json:"expected_duration_sec"`
	TargetLang          string  `json:"target_lang"`
	DubbedURL           string  `json:"dubbed_url"`
	Name                string  `json:"name"`
}

// Listing is the library view for one language. Error is set instead of
// failing the request when the index could not be reached.
type Listing struct {
	TargetLang string         `json:"target_lang"`
	Language   string         `json:"language"`
	Entries    []LibraryEntry `json:"entries"`
	Error      string         `json:"error,omitempty"`
}

// Transcript is the ordered phrase list for a dub.
type Transcript struct {
	DubbingID  string   `json:"dubbing_id"`
	TargetLang string   `json:"target_lang"`
	Phrases    []string `json:"phrases"`
}

// EntryDetail is a library entry with its display fields resolved.
type EntryDetail struct {
	LibraryEntry
	Duration string `json:"duration"`
	Language string `json:"language"`
}
