// Package transcript defines the data model for time-coded transcripts
// and the renderings the refinement engine works with.
//
// A transcript is an ordered slice of [Segment] values, where index order
// is timestamp order. The engine consumes segments and produces [Sentence]
// values (full-transcript refinement) or [Cue] values (subtitle slices).
//
// # Renderings
//
//   - [RenderIndexed] produces the "[12] text" per-segment rendering sent
//     to the correction service
//   - [NormalizeRun] produces a whitespace-collapsed joined text with a
//     per-segment rune-span table, shared by keyword position resolution
//     and character-offset time interpolation
//   - [FormatSRT] and [FormatVTT] render cues as subtitle documents
package transcript
