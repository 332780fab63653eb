package subtitle

import (
	"strings"
	"testing"

	"github.com/mgpai22/subburn/internal/alignment"
)

func TestGroupMergesWords(t *testing.T) {
	seq := mustSequence(t,
		alignment.Entry{Start: 0, End: 0.4, Text: "Hello"},
		alignment.Entry{Start: 0.4, End: 0.9, Text: "world."},
		alignment.Entry{Start: 1.0, End: 1.3, Text: "Next"},
		alignment.Entry{Start: 1.3, End: 1.6, Text: "one"},
		alignment.Entry{Start: 4.0, End: 4.5, Text: "after"},
	)

	cues, err := NewGrouper().Group(seq)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}

	want := []alignment.Entry{
		{Start: 0, End: 0.9, Text: "Hello world."},
		{Start: 1.0, End: 1.6, Text: "Next one"},
		{Start: 4.0, End: 4.5, Text: "after"},
	}
	got := cues.Entries()
	if len(got) != len(want) {
		t.Fatalf("got %d cues, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGroupLimits(t *testing.T) {
	g := &Grouper{MaxCharsPerLine: 10, MaxLinesPerCue: 2, MaxDuration: 2, MaxGap: 1}

	var words []alignment.Entry
	for i := range 12 {
		words = append(words, alignment.Entry{Start: float64(i) * 0.25, End: float64(i+1) * 0.25, Text: "word"})
	}
	cues, err := g.Group(mustSequence(t, words...))
	if err != nil {
		t.Fatalf("Group: %v", err)
	}

	for _, c := range cues.Entries() {
		if c.Length() > g.MaxDuration {
			t.Errorf("cue %+v longer than %v", c, g.MaxDuration)
		}
		for _, line := range strings.Split(c.Text, "\n") {
			if len(line) > g.MaxCharsPerLine {
				t.Errorf("line %q longer than %d", line, g.MaxCharsPerLine)
			}
		}
	}
	// 4 words fit in 2x10 chars ("word word" / "word word")
	if cues.Len() != 3 {
		t.Errorf("got %d cues, want 3", cues.Len())
	}
	if got := cues.At(0).Text; got != "word word\nword word" {
		t.Errorf("first cue = %q", got)
	}
}

func TestFormatText(t *testing.T) {
	g := NewGrouper()
	short := "fits on one line"
	if got := g.formatText(short); got != short {
		t.Errorf("formatText(%q) = %q", short, got)
	}

	long := "this sentence is long enough that it has to wrap onto two lines"
	got := g.formatText(long)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || strings.Join(lines, " ") != long {
		t.Errorf("formatText(long) = %q", got)
	}
}
