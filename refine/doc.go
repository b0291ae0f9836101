// Package refine turns long, time-coded speech transcripts into corrected,
// sentence-level output with exact timestamps, by chunking the transcript to
// fit a completion backend's context window and reconciling the per-chunk
// results back into one deduplicated, time-ordered sequence.
//
// # Pipeline
//
// A refinement run moves through five stages:
//   - [PlanChunks] splits the segment sequence into overlapping windows
//     sized to Config.MaxChunkSegments, each sharing Config.OverlapSegments
//     trailing segments with its successor.
//   - The dispatcher sends each chunk to a [completion.Provider] in batches
//     of Config.Concurrency, joining each batch before the next starts.
//     Any chunk failure aborts the whole run; nothing partial escapes.
//   - The reconciler folds the per-chunk results in ascending chunk order,
//     keeping a watermark of the highest segment index already emitted.
//     A fragment is accepted only when it lies entirely above the watermark
//     and at or below the chunk's cutoff (the chunk end minus its trailing
//     overlap, except for the last chunk). Everything else is dropped:
//     overlap regions are context for the corrector, not contested ground.
//   - Accepted fragments are restamped from the original segments: sentence
//     start = first covered segment's start, end = last covered segment's end.
//   - In subtitle mode the backend returns plain corrected fragments with no
//     index references; a cursor-based resolver locates each fragment inside
//     a normalized rendering of the source and timestamps are linearly
//     interpolated inside the owning segments.
//
// # Usage
//
//	prov, err := ollama.NewProvider(ollama.Config{Model: "llama3.1"})
//	if err != nil {
//	    return err
//	}
//	eng, err := refine.New(prov, refine.DefaultConfig(),
//	    refine.WithDictionary(refine.Dictionary{"kube control": "kubectl"}),
//	    refine.WithProgress(func(done, total int) {
//	        fmt.Printf("corrected %d/%d chunks\n", done, total)
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	sentences, err := eng.Refine(ctx, segments)
//
// For subtitle regeneration over a short slice:
//
//	cues, err := eng.Subtitle(ctx, sliceSegments)
//	fmt.Print(transcript.FormatSRT(cues))
//
// # Failure model
//
// Errors carry an [ErrorCode]: planning errors
// reject degenerate configuration before any call is made, service errors
// wrap backend failures, parse errors name the chunk whose payload could not
// be decoded, and invariant violations (out-of-range segment references)
// are clamped and logged rather than failing the run. The engine never
// retries; retry policy belongs to the completion backend.
package refine
