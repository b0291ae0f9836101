package refine

import (
	"context"
	"fmt"
	"sort"

	"github.com/skillsenselab/refinekit/logger"
)

// reconciled is one accepted fragment with its clamped segment index range.
type reconciled struct {
	text   string
	minIdx int
	maxIdx int
}

// reconcile merges per-chunk results into one deduplicated, ordered list.
// Results are first re-sorted by chunk index; batches may have completed
// out of order, and this is the only stage that needs total ordering. The
// fold keeps a watermark of the highest segment index already emitted
// (starting at -1, only ever increasing) and accepts a fragment only when
// it lies entirely above the watermark and at or below the chunk's cutoff:
// the chunk end minus the trailing overlap for non-last chunks, the chunk
// end itself for the last. Everything else is dropped silently. The first
// chunk to reach a segment wins, and nothing is emitted twice.
//
// Output index ranges are strictly increasing and non-overlapping:
// max(out[i]) < min(out[i+1]) for all i.
func (e *Engine) reconcile(ctx context.Context, results []Result, chunks []Chunk, n int) []reconciled {
	sorted := make([]Result, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Chunk < sorted[j].Chunk })

	log := e.log.WithContext(ctx)
	watermark := -1
	out := make([]reconciled, 0, len(results))

	for _, res := range sorted {
		c := chunks[res.Chunk]
		cutoff := c.End
		if !c.IsLast() {
			cutoff = c.End - e.cfg.OverlapSegments
		}

		for _, f := range res.Fragments {
			lo, hi := e.clampRefs(ctx, res.Chunk, f, n)

			if lo > watermark && hi <= cutoff {
				out = append(out, reconciled{text: f.Text, minIdx: lo, maxIdx: hi})
				if hi > watermark {
					watermark = hi
				}
				e.metrics.AddFragmentsAccepted(ctx, 1)
				continue
			}

			reason := "beyond_cutoff"
			if lo <= watermark {
				reason = "behind_watermark"
			}
			e.metrics.AddFragmentsDropped(ctx, reason, 1)
			log.Debug("fragment dropped", logger.Fields(
				logger.FieldChunk, res.Chunk,
				"reason", reason,
				"min_idx", lo,
				"max_idx", hi,
				logger.FieldWatermark, watermark,
				"cutoff", cutoff,
			))
		}
	}
	return out
}

// clampRefs normalizes a fragment's segment references: reversed pairs are
// swapped, out-of-range references are clamped into [0, n-1]. A clamp is an
// invariant recovery, logged and metered, never fatal.
func (e *Engine) clampRefs(ctx context.Context, chunk int, f Fragment, n int) (lo, hi int) {
	lo, hi = f.StartRef, f.EndRef
	if hi < lo {
		lo, hi = hi, lo
	}

	clamped := false
	if lo < 0 {
		lo, clamped = 0, true
	}
	if lo > n-1 {
		lo, clamped = n-1, true
	}
	if hi < 0 {
		hi, clamped = 0, true
	}
	if hi > n-1 {
		hi, clamped = n-1, true
	}

	if clamped {
		inv := NewInvariantError(chunk, fmt.Sprintf(
			"segment refs [%d,%d] outside [0,%d], clamped to [%d,%d]",
			f.StartRef, f.EndRef, n-1, lo, hi))
		e.metrics.AddInvariantRecovered(ctx, 1)
		e.log.WithContext(ctx).Warn("reconciliation invariant recovered",
			logger.MergeWithError(logger.Fields(logger.FieldChunk, chunk), inv))
	}
	return lo, hi
}
