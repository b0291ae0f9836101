package refine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skillsenselab/refinekit/completion"
	"github.com/skillsenselab/refinekit/transcript"
)

// Dictionary maps known wrong forms to their canonical spelling, passed to
// the corrector as side data (product names, jargon, speaker names).
type Dictionary map[string]string

// PromptBuilder renders correction requests. The default builder covers
// both modes; callers with domain-specific prompt needs supply their own
// through WithPromptBuilder.
type PromptBuilder interface {
	// BuildChunk renders one chunk of a long transcript as indexed lines
	// for index-mode correction.
	BuildChunk(chunk Chunk, segs []transcript.Segment, dict Dictionary) completion.Request
	// BuildSlice renders a short slice as plain text for subtitle-mode
	// correction.
	BuildSlice(segs []transcript.Segment, dict Dictionary) completion.Request
}

// NewPromptBuilder returns the default prompt builder.
func NewPromptBuilder() PromptBuilder {
	return defaultPromptBuilder{}
}

const chunkSystemPrompt = `You are an expert transcript editor. You receive automatic speech recognition output as numbered segments, one segment per line, in the form "[index] text".

Correct recognition errors, punctuation and casing without changing the meaning, and regroup the text into complete sentences. For every sentence report the index of the first and the last source segment it covers. Never invent content that is not in the input.

IMPORTANT: Respond with ONLY one JSON object. No markdown, no code blocks, no explanations. Start with { and end with }. Schema:
{"sentences":[{"text":"corrected sentence","start":first_segment_index,"end":last_segment_index}]}`

const sliceSystemPrompt = `You are an expert subtitle editor. You receive a short transcript excerpt as plain text.

Correct recognition errors, punctuation and casing without changing the meaning, and split the text into short subtitle fragments in reading order. Keep the original wording wherever it is already correct so each fragment can be located in the source. Never invent content that is not in the input.

IMPORTANT: Respond with ONLY one JSON object. No markdown, no code blocks, no explanations. Start with { and end with }. Schema:
{"fragments":["first fragment","second fragment"]}`

type defaultPromptBuilder struct{}

func (defaultPromptBuilder) BuildChunk(chunk Chunk, segs []transcript.Segment, dict Dictionary) completion.Request {
	var b strings.Builder
	b.WriteString(transcript.RenderIndexed(segs, chunk.Start))
	writeGlossary(&b, dict)
	return completion.Request{
		System: chunkSystemPrompt,
		Prompt: b.String(),
	}
}

func (defaultPromptBuilder) BuildSlice(segs []transcript.Segment, dict Dictionary) completion.Request {
	var b strings.Builder
	b.WriteString(transcript.JoinText(segs))
	writeGlossary(&b, dict)
	return completion.Request{
		System: sliceSystemPrompt,
		Prompt: b.String(),
	}
}

// writeGlossary appends the dictionary as a known-terms block, sorted so
// identical dictionaries always render identically.
func writeGlossary(b *strings.Builder, dict Dictionary) {
	if len(dict) == 0 {
		return
	}
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n\nKnown terms (always use the canonical spelling):\n")
	for _, k := range keys {
		fmt.Fprintf(b, "- %q means %q\n", k, dict[k])
	}
}
