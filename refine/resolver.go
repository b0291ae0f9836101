package refine

import (
	"github.com/skillsenselab/refinekit/logger"
	"github.com/skillsenselab/refinekit/transcript"
)

// spanResolver locates corrected fragments inside the normalized transcript
// text. Matching is cursor-driven: each search starts where the previous
// match ended, so repeated phrases resolve to successive occurrences and
// the resolved spans never move backwards.
type spanResolver struct {
	text   []rune
	cursor int
	log    *logger.Logger
}

func newSpanResolver(norm *transcript.Normalized, log *logger.Logger) *spanResolver {
	return &spanResolver{text: []rune(norm.Text), log: log}
}

// resolve returns the rune span of fragment in the transcript text and
// advances the cursor past it. fragment must be normalized the same way
// as the transcript text. An exact match from the cursor wins; otherwise
// the longest run of text shared with the remaining transcript stands in
// for it and the partial match is logged. Resolution never fails: when
// nothing matches at all the fragment gets an empty span at the cursor
// and the cursor stays put.
func (r *spanResolver) resolve(fragment string) transcript.Span {
	frag := []rune(fragment)
	if len(frag) == 0 {
		return transcript.Span{From: r.cursor, To: r.cursor}
	}

	if at := indexRunes(r.text, frag, r.cursor); at >= 0 {
		span := transcript.Span{From: at, To: at + len(frag)}
		r.cursor = span.To
		return span
	}

	from, to, ok := longestCommonRun(r.text[r.cursor:], frag)
	if !ok {
		r.log.Warn("fragment not found in transcript", logger.Fields(
			"fragment", clip(frag, 40),
			"cursor", r.cursor,
		))
		return transcript.Span{From: r.cursor, To: r.cursor}
	}

	span := transcript.Span{From: r.cursor + from, To: r.cursor + to}
	r.log.Warn("fragment matched partially", logger.Fields(
		"fragment", clip(frag, 40),
		"fragment_runes", len(frag),
		"matched_runes", span.Len(),
		"from", span.From,
		"to", span.To,
	))
	r.cursor = span.To
	return span
}

// indexRunes returns the first index at or after start where pat occurs in
// text, or -1.
func indexRunes(text, pat []rune, start int) int {
	if start < 0 {
		start = 0
	}
	for i := start; i+len(pat) <= len(text); i++ {
		j := 0
		for j < len(pat) && text[i+j] == pat[j] {
			j++
		}
		if j == len(pat) {
			return i
		}
	}
	return -1
}

// longestCommonRun finds the longest contiguous run of runes shared by text
// and frag, returning its position in text. Any non-empty run counts; the
// caller decides whether a one-rune match is worth keeping.
func longestCommonRun(text, frag []rune) (from, to int, ok bool) {
	if len(text) == 0 || len(frag) == 0 {
		return 0, 0, false
	}

	// Classic longest-common-substring table, kept to two rows. Every cell
	// is assigned each pass, so the swapped row needs no clearing.
	prev := make([]int, len(frag)+1)
	curr := make([]int, len(frag)+1)
	best, end := 0, 0
	for i := 1; i <= len(text); i++ {
		for j := 1; j <= len(frag); j++ {
			if text[i-1] == frag[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best, end = curr[j], i
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}

	if best == 0 {
		return 0, 0, false
	}
	return end - best, end, true
}

func clip(rs []rune, max int) string {
	if len(rs) <= max {
		return string(rs)
	}
	return string(rs[:max]) + "..."
}
