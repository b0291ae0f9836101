package refine

import (
	"github.com/skillsenselab/refinekit/transcript"
)

// restamp turns reconciled fragments into sentences with real timestamps.
// Each sentence takes the start of its first source segment and the end of
// its last one. Index ranges are already clamped into [0, len(segs)-1] by
// reconciliation.
func restamp(recs []reconciled, segs []transcript.Segment) []transcript.Sentence {
	out := make([]transcript.Sentence, 0, len(recs))
	for _, r := range recs {
		idxs := make([]int, 0, r.maxIdx-r.minIdx+1)
		for i := r.minIdx; i <= r.maxIdx; i++ {
			idxs = append(idxs, i)
		}
		out = append(out, transcript.Sentence{
			Text:     r.text,
			Segments: idxs,
			Start:    segs[r.minIdx].Start,
			End:      segs[r.maxIdx].End,
		})
	}
	return out
}

// interpolateSpan maps a rune span [from, to) of the normalized transcript
// text to a start and end time. Boundaries are interpolated linearly inside
// the segment that contains them, so a fragment covering the first half of
// a segment gets the first half of its time range. An empty span collapses
// to a single instant at the position of from.
func interpolateSpan(norm *transcript.Normalized, segs []transcript.Segment, from, to int) (float64, float64) {
	if to <= from {
		seg := norm.SegmentAt(from)
		t := interpolateBoundary(norm, segs, seg, from)
		return t, t
	}

	// The end boundary is anchored in the segment containing the last rune,
	// not the one containing to: to may already be the next segment's start.
	startSeg := norm.SegmentAt(from)
	endSeg := norm.SegmentAt(to - 1)

	start := interpolateBoundary(norm, segs, startSeg, from)
	end := interpolateBoundary(norm, segs, endSeg, to)
	return start, end
}

// interpolateBoundary converts a rune offset to a time within segment seg,
// proportional to where the offset falls in the segment's run of text.
func interpolateBoundary(norm *transcript.Normalized, segs []transcript.Segment, seg, off int) float64 {
	span := norm.Runs[seg]
	if span.Len() == 0 {
		return segs[seg].Start
	}

	rel := off - span.From
	if rel < 0 {
		rel = 0
	}
	if rel > span.Len() {
		rel = span.Len()
	}

	s := segs[seg]
	return s.Start + float64(rel)/float64(span.Len())*(s.End-s.Start)
}
