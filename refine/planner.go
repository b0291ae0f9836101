package refine

import "fmt"

// Chunk is a window of segment indices [Start, End], both inclusive, sized
// to fit one correction request. Consecutive chunks share the trailing
// OverlapSegments segments: chunk i+1 starts at chunk i's End - overlap + 1.
type Chunk struct {
	// Index is the chunk's position in the plan.
	Index int
	// Total is the number of chunks in the plan.
	Total int
	// Start is the first segment index covered (inclusive).
	Start int
	// End is the last segment index covered (inclusive).
	End int
}

// Size returns the number of segments the chunk covers.
func (c Chunk) Size() int { return c.End - c.Start + 1 }

// IsLast reports whether this is the final chunk of the plan.
func (c Chunk) IsLast() bool { return c.Index == c.Total-1 }

// PlanChunks splits n segments into overlapping chunks under cfg's policy.
// The plan always covers [0, n-1]: the first chunk starts at 0, every later
// chunk starts at its predecessor's End - OverlapSegments + 1, and the last
// chunk ends exactly at n-1. When n fits in a single chunk no overlap is
// produced. Planning is pure: the same n and policy always yield the same
// boundaries.
func PlanChunks(n int, cfg Config) ([]Chunk, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, NewPlanningError(fmt.Sprintf("negative segment count %d", n))
	}
	if n == 0 {
		return nil, nil
	}

	if n <= cfg.MaxChunkSegments {
		return []Chunk{{Index: 0, Total: 1, Start: 0, End: n - 1}}, nil
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + cfg.MaxChunkSegments - 1
		if end >= n-1 {
			chunks = append(chunks, Chunk{Start: start, End: n - 1})
			break
		}
		chunks = append(chunks, Chunk{Start: start, End: end})
		start = end - cfg.OverlapSegments + 1
	}
	for i := range chunks {
		chunks[i].Index = i
		chunks[i].Total = len(chunks)
	}
	return chunks, nil
}
