package transcript

// Sentence is a corrected, re-segmented sentence with its provenance.
type Sentence struct {
	// Text is the corrected sentence text.
	Text string `json:"text"`
	// Segments holds the ascending original segment indices this sentence
	// was built from.
	Segments []int `json:"segments"`
	// Start is the sentence start time in seconds.
	Start float64 `json:"start"`
	// End is the sentence end time in seconds.
	End float64 `json:"end"`
}

// Cue is one subtitle display line with sub-segment timing.
type Cue struct {
	// Text is the display text for this line.
	Text string `json:"text"`
	// Start is the cue start time in seconds.
	Start float64 `json:"start"`
	// End is the cue end time in seconds.
	End float64 `json:"end"`
}

// CuesFromSentences flattens sentences into display cues, keeping times.
func CuesFromSentences(sentences []Sentence) []Cue {
	cues := make([]Cue, 0, len(sentences))
	for _, s := range sentences {
		cues = append(cues, Cue{Text: s.Text, Start: s.Start, End: s.End})
	}
	return cues
}
