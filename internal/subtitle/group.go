package subtitle

import (
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/subburn/internal/alignment"
)

// Grouper merges word-level entries into readable cues
type Grouper struct {
	MaxCharsPerLine int
	MaxLinesPerCue  int
	// seconds
	MaxDuration float64
	// silence longer than this starts a new cue
	MaxGap float64
}

func NewGrouper() *Grouper {
	return &Grouper{
		MaxCharsPerLine: 42, // standard subtitle line length
		MaxLinesPerCue:  2,  // most players support 2 lines
		MaxDuration:     7,
		MaxGap:          0.6,
	}
}

// Group returns a new sequence of cues built from consecutive entries.
// A cue ends at sentence punctuation, a long gap, or when adding the
// next entry would exceed the length or duration limits.
func (g *Grouper) Group(seq *alignment.Sequence) (*alignment.Sequence, error) {
	var (
		cues  []alignment.Entry
		words []string
		cur   alignment.Entry
	)
	maxChars := g.MaxCharsPerLine * g.MaxLinesPerCue

	flush := func() {
		if len(words) == 0 {
			return
		}
		cur.Text = g.formatText(strings.Join(words, " "))
		cues = append(cues, cur)
		words = nil
	}

	for _, e := range seq.Entries() {
		if len(words) > 0 {
			joined := utf8.RuneCountInString(strings.Join(words, " ")) + 1 + utf8.RuneCountInString(e.Text)
			if e.Start-cur.End > g.MaxGap ||
				max(e.End, cur.End)-cur.Start > g.MaxDuration ||
				joined > maxChars ||
				endsSentence(words[len(words)-1]) {
				flush()
			}
		}

		if len(words) == 0 {
			cur = alignment.Entry{Start: e.Start, End: e.End}
		}
		cur.End = max(cur.End, e.End)
		words = append(words, strings.ReplaceAll(e.Text, "\n", " "))
	}
	flush()

	return alignment.New(cues)
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") ||
		strings.HasSuffix(word, "?") ||
		strings.HasSuffix(word, "!")
}

// formatText formats text for display with line wrapping
func (g *Grouper) formatText(text string) string {
	text = strings.TrimSpace(text)
	runeCount := utf8.RuneCountInString(text)

	// if text fits on one line, return as is
	if runeCount <= g.MaxCharsPerLine || g.MaxLinesPerCue < 2 {
		return text
	}

	// try to split into two lines at a natural break point
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	// find the best split point (closest to middle)
	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		return strings.Join(words[:bestSplit], " ") + "\n" + strings.Join(words[bestSplit:], " ")
	}
	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
