package refine

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/skillsenselab/refinekit/transcript"
)

// linePart is one display line of a subtitle fragment together with its
// share of the fragment's rune span.
type linePart struct {
	text string
	span transcript.Span
}

// wrapFragment splits text into lines of at most maxRunes runes, breaking
// only between words, and divides span across the lines in proportion to
// their rune counts. The resulting spans exactly tile [span.From, span.To):
// each line starts where the previous one ended and the last line ends at
// span.To. A word longer than maxRunes becomes a line of its own rather
// than being split. A nonpositive maxRunes disables wrapping.
func wrapFragment(text string, span transcript.Span, maxRunes int) []linePart {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []linePart{{text: text, span: span}}
	}

	var lines []string
	cur := words[0]
	curLen := utf8.RuneCountInString(words[0])
	for _, w := range words[1:] {
		wLen := utf8.RuneCountInString(w)
		if curLen+1+wLen <= maxRunes {
			cur += " " + w
			curLen += 1 + wLen
			continue
		}
		lines = append(lines, cur)
		cur, curLen = w, wLen
	}
	lines = append(lines, cur)

	if len(lines) == 1 {
		return []linePart{{text: lines[0], span: span}}
	}

	total := 0
	widths := make([]int, len(lines))
	for i, ln := range lines {
		widths[i] = utf8.RuneCountInString(ln)
		total += widths[i]
	}

	parts := make([]linePart, 0, len(lines))
	from := span.From
	acc := 0
	for i, ln := range lines {
		acc += widths[i]
		to := span.From + int(math.Round(float64(span.Len())*float64(acc)/float64(total)))
		if i == len(lines)-1 {
			to = span.To
		}
		if to < from {
			to = from
		}
		parts = append(parts, linePart{text: ln, span: transcript.Span{From: from, To: to}})
		from = to
	}
	return parts
}
