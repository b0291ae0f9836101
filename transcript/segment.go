package transcript

import (
	"fmt"
	"strings"
)

// Segment represents the smallest time-coded unit of a source transcript.
type Segment struct {
	// Text is the recognized text for this segment.
	Text string `json:"text"`
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Confidence is the recognizer's confidence, if available.
	Confidence float64 `json:"confidence,omitempty"`
}

// Validate checks that segments form a well-ordered transcript: no negative
// times, no end before start, and non-decreasing start times across the
// slice. It names the first offending segment index.
func Validate(segments []Segment) error {
	for i, seg := range segments {
		if seg.Start < 0 {
			return fmt.Errorf("segment %d: negative start time %.3f", i, seg.Start)
		}
		if seg.End < seg.Start {
			return fmt.Errorf("segment %d: end %.3f before start %.3f", i, seg.End, seg.Start)
		}
		if i > 0 && seg.Start < segments[i-1].Start {
			return fmt.Errorf("segment %d: start %.3f earlier than segment %d", i, seg.Start, i-1)
		}
	}
	return nil
}

// Duration returns the wall-clock span covered by the segments.
func Duration(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End - segments[0].Start
}

// JoinText joins trimmed segment texts with single spaces.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// RenderIndexed renders segments one per line, each prefixed with its
// absolute index: "[base+i] text". This is the rendering the correction
// service sees, so its replies can reference segments by index.
func RenderIndexed(segments []Segment, base int) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s", base+i, strings.TrimSpace(seg.Text))
	}
	return b.String()
}
