package refine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fragment is one corrected unit returned by the correction service for a
// chunk, before reconciliation. StartRef and EndRef are segment indices in
// index mode; subtitle mode carries no references and resolves character
// spans instead.
type Fragment struct {
	Text     string
	StartRef int
	EndRef   int
}

// Result is one chunk's parsed correction payload.
type Result struct {
	Chunk     int
	Fragments []Fragment
}

// ExtractJSONBlock returns the first balanced {...} block in s, tolerating
// markdown fences, prose preludes and trailing chatter around it. The scan
// tracks string literals and escapes, so braces inside JSON strings do not
// unbalance it. Reports false when no complete block exists.
func ExtractJSONBlock(s string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			// Quotes outside any block are prose; only track strings
			// inside a JSON block.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// Index-mode payload: {"sentences":[{"text":...,"start":...,"end":...}]}.
// Field pointers distinguish a missing field from a zero value.
type sentencesPayload struct {
	Sentences []sentenceEntry `json:"sentences"`
}

type sentenceEntry struct {
	Text  *string  `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// parseSentences decodes an index-mode correction payload into fragments.
// A response without a JSON block, with undecodable JSON, with no sentences,
// or with a sentence missing a required field is a parse error naming the
// chunk.
func parseSentences(chunk int, payload string) ([]Fragment, error) {
	block, ok := ExtractJSONBlock(payload)
	if !ok {
		return nil, NewParseError(chunk, "no JSON object in response", nil)
	}

	var p sentencesPayload
	if err := json.Unmarshal([]byte(block), &p); err != nil {
		return nil, NewParseError(chunk, "undecodable JSON payload", err)
	}
	if len(p.Sentences) == 0 {
		return nil, NewParseError(chunk, `payload has no "sentences"`, nil)
	}

	frags := make([]Fragment, 0, len(p.Sentences))
	for i, s := range p.Sentences {
		if s.Text == nil || s.Start == nil || s.End == nil {
			return nil, NewParseError(chunk, fmt.Sprintf("sentence %d is missing required fields", i), nil)
		}
		text := strings.TrimSpace(*s.Text)
		if text == "" {
			continue
		}
		frags = append(frags, Fragment{
			Text:     text,
			StartRef: int(*s.Start),
			EndRef:   int(*s.End),
		})
	}
	return frags, nil
}

// Subtitle-mode payload: {"fragments":["...", ...]}.
type fragmentsPayload struct {
	Fragments []string `json:"fragments"`
}

// parseFragments decodes a subtitle-mode correction payload into corrected
// text fragments in emission order. Blank fragments are skipped.
func parseFragments(chunk int, payload string) ([]string, error) {
	block, ok := ExtractJSONBlock(payload)
	if !ok {
		return nil, NewParseError(chunk, "no JSON object in response", nil)
	}

	var p fragmentsPayload
	if err := json.Unmarshal([]byte(block), &p); err != nil {
		return nil, NewParseError(chunk, "undecodable JSON payload", err)
	}
	if len(p.Fragments) == 0 {
		return nil, NewParseError(chunk, `payload has no "fragments"`, nil)
	}

	out := make([]string, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		if t := strings.TrimSpace(f); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, NewParseError(chunk, `payload has only blank "fragments"`, nil)
	}
	return out, nil
}
