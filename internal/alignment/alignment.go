// Package alignment holds the timed text entries subtitles are rendered from.
package alignment

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// one timed word or phrase, times in seconds
type Entry struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Visible reports whether t falls inside [Start, End).
func (e Entry) Visible(t float64) bool {
	return t >= e.Start && t < e.End
}

func (e Entry) Length() float64 {
	return e.End - e.Start
}

// Sequence is an immutable list of entries sorted by start time.
// Overlapping entries are allowed.
type Sequence struct {
	entries []Entry
	// maxEnd[i] is the largest End among entries[0..i]
	maxEnd []float64
}

// New validates entries and returns them as a sorted sequence. The
// caller's slice is copied and never reordered.
func New(entries []Entry) (*Sequence, error) {
	sorted := make([]Entry, len(entries))
	for i, e := range entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		e.Text = norm.NFC.String(strings.TrimSpace(e.Text))
		sorted[i] = e
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	maxEnd := make([]float64, len(sorted))
	running := math.Inf(-1)
	for i, e := range sorted {
		running = math.Max(running, e.End)
		maxEnd[i] = running
	}

	return &Sequence{entries: sorted, maxEnd: maxEnd}, nil
}

func validate(e Entry) error {
	if math.IsNaN(e.Start) || math.IsInf(e.Start, 0) ||
		math.IsNaN(e.End) || math.IsInf(e.End, 0) {
		return fmt.Errorf("times must be finite, got [%v, %v]", e.Start, e.End)
	}
	if e.Start < 0 {
		return fmt.Errorf("start %v is negative", e.Start)
	}
	if e.End < e.Start {
		return fmt.Errorf("end %v is before start %v", e.End, e.Start)
	}
	if strings.TrimSpace(e.Text) == "" {
		return fmt.Errorf("text is empty")
	}
	return nil
}

func (s *Sequence) Len() int {
	return len(s.entries)
}

func (s *Sequence) At(i int) Entry {
	return s.entries[i]
}

// Entries returns a copy of the sorted entries.
func (s *Sequence) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ActiveAt returns the entries visible at t in start order.
func (s *Sequence) ActiveAt(t float64) []Entry {
	// entries starting after t can't be visible
	hi := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Start > t
	})
	// before lo every entry has already ended
	lo := sort.Search(hi, func(i int) bool {
		return s.maxEnd[i] > t
	})

	var active []Entry
	for _, e := range s.entries[lo:hi] {
		if e.Visible(t) {
			active = append(active, e)
		}
	}
	return active
}

// Duration is the latest end time, 0 for an empty sequence.
func (s *Sequence) Duration() float64 {
	if len(s.maxEnd) == 0 {
		return 0
	}
	return s.maxEnd[len(s.maxEnd)-1]
}
