package transcript

import (
	"fmt"
	"strings"
)

// FormatSRT renders cues as an SRT subtitle document.
func FormatSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", formatSRTTime(cue.Start), formatSRTTime(cue.End))
		sb.WriteString(strings.TrimSpace(cue.Text))
		sb.WriteString("\n\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// FormatVTT renders cues as a WebVTT subtitle document.
func FormatVTT(cues []Cue) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, cue := range cues {
		fmt.Fprintf(&sb, "%s --> %s\n", formatVTTTime(cue.Start), formatVTTTime(cue.End))
		sb.WriteString(strings.TrimSpace(cue.Text))
		sb.WriteString("\n\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// formatSRTTime converts seconds to SRT timestamp format (HH:MM:SS,mmm).
func formatSRTTime(seconds float64) string {
	hours, minutes, secs, millis := splitTime(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// formatVTTTime converts seconds to WebVTT timestamp format (HH:MM:SS.mmm).
func formatVTTTime(seconds float64) string {
	hours, minutes, secs, millis := splitTime(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

func splitTime(seconds float64) (int, int, int, int) {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	millis := int((seconds - float64(whole)) * 1000)
	return whole / 3600, (whole % 3600) / 60, whole % 60, millis
}
