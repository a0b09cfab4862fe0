// internal/clip/selection.go
package clip

import (
	"fmt"
	"math"
)

// MaxLength is the longest clip, in seconds, the dubbing backend accepts.
const MaxLength = 40.0

// minGap keeps the end handle at least one second after the start handle.
const minGap = 1.0

// Selection is the state of the clip picker for one source video.
// All times are seconds. Values are copied, never shared: Reduce returns a new Selection.
type Selection struct {
	Duration float64 `json:"duration"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Current  float64 `json:"current"`
	Playing  bool    `json:"playing"`
}

// New returns the initial selection for a source of the given duration:
// the whole video is selected and playback starts at zero.
// The max-length rule is applied on the first handle move, not here.
func New(duration float64) Selection {
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	return Selection{
		Duration: duration,
		Start:    0,
		End:      duration,
		Current:  0,
		Playing:  true,
	}
}

// EventType names a user or player interaction.
type EventType string

const (
	EventMoveStart   EventType = "move_start"
	EventMoveEnd     EventType = "move_end"
	EventDragStart   EventType = "drag_start"
	EventDragEnd     EventType = "drag_end"
	EventTick        EventType = "tick"
	EventSeek        EventType = "seek"
	EventTogglePlay  EventType = "toggle_play"
	EventPlayClip    EventType = "play_clip"
	EventSetDuration EventType = "set_duration"
)

// Event is one interaction. Value is seconds for move/tick/seek/set_duration
// and a fraction of the progress bar width for drag events.
type Event struct {
	Type  EventType `json:"type"`
	Value float64   `json:"value"`
}

// Validate reports whether the event can be applied.
func (e Event) Validate() error {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return fmt.Errorf("event %s: value must be finite", e.Type)
	}
	switch e.Type {
	case EventMoveStart, EventMoveEnd, EventDragStart, EventDragEnd,
		EventTick, EventSeek, EventTogglePlay, EventPlayClip, EventSetDuration:
		return nil
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}

// Reduce applies a single event. Unknown events leave the selection unchanged.
func Reduce(s Selection, e Event) Selection {
	switch e.Type {
	case EventMoveStart:
		return s.MoveStart(e.Value)
	case EventMoveEnd:
		return s.MoveEnd(e.Value)
	case EventDragStart:
		return s.MoveStart(fractionToSeconds(e.Value, s.Duration))
	case EventDragEnd:
		return s.MoveEnd(fractionToSeconds(e.Value, s.Duration))
	case EventTick:
		return s.Tick(e.Value)
	case EventSeek:
		return s.Seek(e.Value)
	case EventTogglePlay:
		return s.TogglePlay()
	case EventPlayClip:
		return s.PlayClip()
	case EventSetDuration:
		return s.SetDuration(e.Value)
	}
	return s
}

// ReduceAll folds events left to right.
func ReduceAll(s Selection, events ...Event) Selection {
	for _, e := range events {
		s = Reduce(s, e)
	}
	return s
}

// MoveStart moves the start handle to t with the end handle fixed.
func (s Selection) MoveStart(t float64) Selection {
	start := math.Min(t, s.End-minGap)
	start = math.Max(start, s.End-MaxLength)
	// sources shorter than minGap cannot keep a gap; the floor wins
	start = math.Max(start, 0)
	s.Start = start
	if s.Current < start {
		s.Current = start
	}
	return s
}

// MoveEnd moves the end handle to t with the start handle fixed.
func (s Selection) MoveEnd(t float64) Selection {
	end := math.Max(t, s.Start+minGap)
	end = math.Min(end, s.Start+MaxLength)
	end = math.Min(end, s.Duration)
	if end < s.Start {
		end = s.Start
	}
	s.End = end
	if s.Current > end {
		s.Current = end
	}
	return s
}

// Tick records player progress. Reaching the end of the selection while
// playing loops back to the start.
func (s Selection) Tick(t float64) Selection {
	s.Current = t
	if s.Playing && s.Current >= s.End {
		s.Current = s.Start
	}
	return s
}

// Seek moves the playhead without touching the handles.
func (s Selection) Seek(t float64) Selection {
	s.Current = clamp(t, 0, s.Duration)
	return s
}

// TogglePlay flips playback; a playhead outside the selection jumps to its start.
func (s Selection) TogglePlay() Selection {
	s.Playing = !s.Playing
	if s.Current < s.Start || s.Current > s.End {
		s.Current = s.Start
	}
	return s
}

// PlayClip restarts playback from the beginning of the selection.
func (s Selection) PlayClip() Selection {
	s.Current = s.Start
	s.Playing = true
	return s
}

// SetDuration records the duration reported by the player once metadata loads.
// A shorter duration pulls the end handle in and the start handle back so the
// gap survives.
func (s Selection) SetDuration(d float64) Selection {
	if d < 0 {
		d = 0
	}
	s.Duration = d
	if s.End == 0 || s.End > d {
		s.End = d
	}
	if s.End-s.Start < minGap {
		s.Start = math.Max(s.End-minGap, 0)
	}
	s.Current = clamp(s.Current, s.Start, s.End)
	return s
}

// MaxLengthReached reports whether the selection is at the length limit.
func (s Selection) MaxLengthReached() bool {
	return s.End-s.Start >= MaxLength
}

// Length is the selected span in seconds.
func (s Selection) Length() float64 {
	return s.End - s.Start
}

// Range returns the selection truncated to whole seconds, as sent to the dubbing backend.
func (s Selection) Range() (start, end int) {
	return int(math.Floor(s.Start)), int(math.Floor(s.End))
}

// Valid reports whether the selection satisfies the handle invariants.
func (s Selection) Valid() bool {
	if s.Start < 0 || s.End > s.Duration || s.Start > s.End {
		return false
	}
	return s.Duration < minGap || s.End-s.Start >= minGap
}

// FormatTime renders seconds as M:SS.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func fractionToSeconds(f, duration float64) float64 {
	return clamp(f, 0, 1) * duration
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
