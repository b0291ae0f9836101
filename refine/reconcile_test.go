package refine

import (
	"context"
	"testing"
)

func reconcileEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngine(t, &scriptedProvider{}, Config{MaxChunkSegments: 6, OverlapSegments: 2})
}

func assertIncreasing(t *testing.T, recs []reconciled) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		if recs[i].minIdx <= recs[i-1].maxIdx {
			t.Errorf("ranges not strictly increasing: [%d,%d] then [%d,%d]",
				recs[i-1].minIdx, recs[i-1].maxIdx, recs[i].minIdx, recs[i].maxIdx)
		}
	}
}

func TestReconcileBoundaryDrop(t *testing.T) {
	eng := reconcileEngine(t)
	chunks, err := PlanChunks(10, eng.cfg)
	if err != nil {
		t.Fatalf("PlanChunks: %v", err)
	}

	results := []Result{
		{Chunk: 0, Fragments: []Fragment{
			{Text: "First.", StartRef: 0, EndRef: 2},
			{Text: "Crosses the cutoff.", StartRef: 3, EndRef: 5},
		}},
		{Chunk: 1, Fragments: []Fragment{
			{Text: "Second.", StartRef: 4, EndRef: 6},
			{Text: "Third.", StartRef: 7, EndRef: 9},
		}},
	}

	recs := eng.reconcile(context.Background(), results, chunks, 10)
	want := []reconciled{
		{text: "First.", minIdx: 0, maxIdx: 2},
		{text: "Second.", minIdx: 4, maxIdx: 6},
		{text: "Third.", minIdx: 7, maxIdx: 9},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d reconciled, want %d: %+v", len(recs), len(want), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("reconciled %d = %+v, want %+v", i, recs[i], want[i])
		}
	}
	// Segment 3 sits past chunk 0's cutoff and below chunk 1's claims:
	// it stays unclaimed rather than being emitted twice or invented.
	for _, r := range recs {
		if r.minIdx <= 3 && 3 <= r.maxIdx {
			t.Errorf("segment 3 claimed by %+v", r)
		}
	}
	assertIncreasing(t, recs)
}

func TestReconcileDropsDuplicateClaims(t *testing.T) {
	eng := reconcileEngine(t)
	chunks, err := PlanChunks(10, eng.cfg)
	if err != nil {
		t.Fatalf("PlanChunks: %v", err)
	}

	results := []Result{
		{Chunk: 0, Fragments: []Fragment{
			{Text: "Up to the cutoff.", StartRef: 0, EndRef: 3},
		}},
		{Chunk: 1, Fragments: []Fragment{
			{Text: "Reclaims overlap.", StartRef: 2, EndRef: 5},
			{Text: "Clean tail.", StartRef: 6, EndRef: 9},
		}},
	}

	recs := eng.reconcile(context.Background(), results, chunks, 10)
	if len(recs) != 2 {
		t.Fatalf("got %d reconciled, want 2: %+v", len(recs), recs)
	}
	if recs[0].maxIdx != 3 || recs[1].minIdx != 6 {
		t.Errorf("unexpected ranges: %+v", recs)
	}
	assertIncreasing(t, recs)
}

func TestReconcileSortsResultsByChunk(t *testing.T) {
	eng := reconcileEngine(t)
	chunks, err := PlanChunks(10, eng.cfg)
	if err != nil {
		t.Fatalf("PlanChunks: %v", err)
	}

	// Batches complete out of order; reconciliation must not care.
	results := []Result{
		{Chunk: 1, Fragments: []Fragment{{Text: "B.", StartRef: 4, EndRef: 9}}},
		{Chunk: 0, Fragments: []Fragment{{Text: "A.", StartRef: 0, EndRef: 3}}},
	}

	recs := eng.reconcile(context.Background(), results, chunks, 10)
	if len(recs) != 2 {
		t.Fatalf("got %d reconciled, want 2: %+v", len(recs), recs)
	}
	if recs[0].text != "A." || recs[1].text != "B." {
		t.Errorf("results not reordered by chunk: %+v", recs)
	}
	assertIncreasing(t, recs)
}

func TestReconcileClampsOutOfRangeRefs(t *testing.T) {
	eng := reconcileEngine(t)
	chunks, err := PlanChunks(10, eng.cfg)
	if err != nil {
		t.Fatalf("PlanChunks: %v", err)
	}

	results := []Result{
		{Chunk: 0, Fragments: []Fragment{
			{Text: "Negative start.", StartRef: -5, EndRef: 2},
		}},
		{Chunk: 1, Fragments: []Fragment{
			{Text: "Reversed refs.", StartRef: 6, EndRef: 4},
			{Text: "Past the end.", StartRef: 8, EndRef: 15},
		}},
	}

	recs := eng.reconcile(context.Background(), results, chunks, 10)
	want := []reconciled{
		{text: "Negative start.", minIdx: 0, maxIdx: 2},
		{text: "Reversed refs.", minIdx: 4, maxIdx: 6},
		{text: "Past the end.", minIdx: 8, maxIdx: 9},
	}
	if len(recs) != len(want) {
		t.Fatalf("got %d reconciled, want %d: %+v", len(recs), len(want), recs)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("reconciled %d = %+v, want %+v", i, recs[i], want[i])
		}
	}
	assertIncreasing(t, recs)
}

func TestReconcileEmptyResults(t *testing.T) {
	eng := reconcileEngine(t)
	chunks, err := PlanChunks(10, eng.cfg)
	if err != nil {
		t.Fatalf("PlanChunks: %v", err)
	}

	results := []Result{{Chunk: 0}, {Chunk: 1}}
	if recs := eng.reconcile(context.Background(), results, chunks, 10); len(recs) != 0 {
		t.Errorf("expected no reconciled fragments, got %+v", recs)
	}
}
