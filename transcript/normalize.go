package transcript

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Span is a half-open rune range [From, To) inside a normalized text.
type Span struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Len returns the rune length of the span.
func (s Span) Len() int { return s.To - s.From }

// Normalized is a whitespace-collapsed rendering of a segment run with a
// per-segment rune-span table. Offsets are rune offsets, so multibyte text
// maps cleanly.
type Normalized struct {
	// Text is the collapsed run text, segments joined by single spaces.
	Text string
	// Runs maps each segment position to its rune span inside Text.
	Runs []Span
}

// Normalize collapses all whitespace runs in s to single spaces and trims
// the ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeRun builds the collapsed rendering of a segment run. Segments
// whose text normalizes to empty get a zero-length span at their position.
func NormalizeRun(segments []Segment) *Normalized {
	var b strings.Builder
	runs := make([]Span, len(segments))
	cur := 0

	for i, seg := range segments {
		text := Normalize(seg.Text)
		n := utf8.RuneCountInString(text)
		if n == 0 {
			runs[i] = Span{From: cur, To: cur}
			continue
		}
		if cur > 0 {
			b.WriteByte(' ')
			cur++
		}
		runs[i] = Span{From: cur, To: cur + n}
		b.WriteString(text)
		cur += n
	}

	return &Normalized{Text: b.String(), Runs: runs}
}

// RuneLen returns the rune length of the normalized text.
func (n *Normalized) RuneLen() int {
	return utf8.RuneCountInString(n.Text)
}

// SegmentAt maps a rune offset to the segment position covering it.
// Offsets on the joining space between two segments map to the following
// segment; out-of-range offsets clamp to the first or last position.
func (n *Normalized) SegmentAt(off int) int {
	if len(n.Runs) == 0 {
		return 0
	}
	if off < 0 {
		return 0
	}
	i := sort.Search(len(n.Runs), func(i int) bool {
		return n.Runs[i].To > off
	})
	if i >= len(n.Runs) {
		return len(n.Runs) - 1
	}
	return i
}
